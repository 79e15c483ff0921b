package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"outings/config"
	"outings/globals"
	"outings/users"
)

// JWT claims
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

const tokenTTL = 24 * time.Hour

// Auth verifies bearer tokens and attaches the acting principal to the
// request context. In open security mode every request acts as the first
// seeded user and no token is checked.
type Auth struct {
	Secret []byte
	Mode   string
	Users  *users.Service
	Log    *zap.Logger
}

func NewAuth(cfg config.Config, us *users.Service, log *zap.Logger) *Auth {
	return &Auth{
		Secret: []byte(cfg.JWTSecret),
		Mode:   cfg.SecurityMode,
		Users:  us,
		Log:    log,
	}
}

// GenerateToken mints an HS256 access token for a user.
func (a *Auth) GenerateToken(userID, email string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// ValidateToken parses and verifies a raw token string.
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	return claims, nil
}

// Authenticate wraps a handler with the bearer check (or open-mode
// impersonation) and stores the principal's id and email in the context.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if a.Mode == config.OpenMode {
			acting, err := a.Users.First()
			if err != nil {
				a.Log.Error("open security mode has no acting user", zap.Error(err))
				http.Error(w, "Open security mode is enabled but no acting user is available.",
					http.StatusInternalServerError)
				return
			}
			next(w, r.WithContext(withPrincipal(r.Context(), acting.ID, acting.Email)), ps)
			return
		}

		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Authentication required. Please provide a valid token.", http.StatusUnauthorized)
			return
		}

		claims, err := a.ValidateToken(token)
		if err != nil {
			a.Log.Warn("invalid token", zap.Error(err))
			http.Error(w, "Invalid or expired token. Please login again.", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(withPrincipal(r.Context(), claims.UserID, claims.Email)), ps)
	}
}

// OptionalAuth attaches the principal when a valid token is present and
// proceeds regardless.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if token := bearerToken(r); token != "" {
			if claims, err := a.ValidateToken(token); err == nil {
				r = r.WithContext(withPrincipal(r.Context(), claims.UserID, claims.Email))
			}
		}
		next(w, r, ps)
	}
}

func withPrincipal(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, globals.UserIDKey, userID)
	return context.WithValue(ctx, globals.UserEmailKey, email)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
