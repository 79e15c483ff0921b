package routes

import (
	"github.com/julienschmidt/httprouter"

	"outings/activities"
	"outings/auth"
	"outings/bookings"
	"outings/middleware"
	"outings/payments"
	"outings/ratelim"
)

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rl *ratelim.RateLimiter) {
	router.POST("/users", rl.Limit(h.Register))
	router.POST("/login", rl.Limit(h.Login))
}

func AddActivityRoutes(router *httprouter.Router, h *activities.Handler, mw *middleware.Auth) {
	router.GET("/activities", h.List)
	router.GET("/activities/:id", h.Get)
	router.POST("/activities", mw.Authenticate(h.Create))
	router.PUT("/activities/:id", mw.Authenticate(h.Update))
	router.DELETE("/activities/:id", mw.Authenticate(h.Delete))
	router.PATCH("/activities/:id/status", mw.Authenticate(h.TransitionStatus))
}

func AddBookingRoutes(router *httprouter.Router, h *bookings.Handler, mw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/bookings", rl.Limit(mw.Authenticate(h.Create)))
	router.GET("/bookings", mw.Authenticate(h.ListMine))
	router.GET("/bookings/:id", mw.Authenticate(h.GetOne))
	router.GET("/bookings/:id/receipt", mw.Authenticate(h.Receipt))
}

func AddPaymentRoutes(router *httprouter.Router, h *payments.Handler, mw *middleware.Auth) {
	router.GET("/payments/:id", mw.Authenticate(h.GetPayment))
}
