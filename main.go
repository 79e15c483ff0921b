package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"outings/activities"
	"outings/auth"
	"outings/bookings"
	"outings/config"
	"outings/globals"
	"outings/logger"
	"outings/middleware"
	"outings/models"
	"outings/payments"
	"outings/ratelim"
	"outings/routes"
	"outings/store"
	"outings/users"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// requestLogging tags each request with an id and logs method, path and
// duration.
func requestLogging(lg *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		r = r.WithContext(context.WithValue(r.Context(), globals.RequestIDKey, reqID))
		next.ServeHTTP(w, r)
		lg.Info("request",
			zap.String("id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok","message":"Outings API"}`)
}

func Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	lg, err := logger.Init(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	// one store per entity family; activities carry read-only seed data
	activityStore := store.New[models.Activity](cfg.EntityFile("activities"), cfg.SeedFile("activities"), lg)
	userStore := store.New[models.User](cfg.EntityFile("users"), "", lg)
	bookingStore := store.New[models.Booking](cfg.EntityFile("bookings"), "", lg)
	paymentStore := store.New[models.Payment](cfg.EntityFile("payments"), "", lg)

	activityStore.Load()
	userStore.Load()
	bookingStore.Load()
	paymentStore.Load()

	userSvc := users.NewService(userStore, lg)
	activitySvc := activities.NewService(activityStore, lg)
	paymentSvc := payments.NewService(paymentStore, payments.NewMockGateway(lg), lg)
	bookingSvc := bookings.NewService(bookingStore, activitySvc, paymentSvc, lg)

	if cfg.SecurityMode == config.OpenMode && userSvc.Count() == 0 {
		lg.Fatal("open security mode requires at least one user in the users document")
	}
	lg.Info("security mode", zap.String("mode", cfg.SecurityMode))

	authMW := middleware.NewAuth(cfg, userSvc, lg)
	rateLimiter := ratelim.NewRateLimiter(5, 10)

	authHandler := auth.NewHandler(userSvc, authMW, lg)
	activityHandler := activities.NewHandler(activitySvc, lg)
	bookingHandler := bookings.NewHandler(bookingSvc, []byte(cfg.JWTSecret), lg)
	paymentHandler := payments.NewHandler(paymentSvc, bookingSvc, lg)

	router := httprouter.New()
	router.GET("/", Index)
	router.GET("/health", Health)
	routes.AddAuthRoutes(router, authHandler, rateLimiter)
	routes.AddActivityRoutes(router, activityHandler, authMW)
	routes.AddBookingRoutes(router, bookingHandler, authMW, rateLimiter)
	routes.AddPaymentRoutes(router, paymentHandler, authMW)

	// middleware chain: CORS → security headers → request logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := requestLogging(lg, securityHeaders(corsHandler))

	port := cfg.Port
	if port == "" {
		port = "3000"
	}
	if port[0] != ':' {
		port = ":" + port
	}

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		lg.Info("server listening", zap.String("addr", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("listen and serve failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	lg.Info("shutdown signal received, shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		lg.Fatal("graceful shutdown failed", zap.Error(err))
	}

	lg.Info("server stopped cleanly")
}
