package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"outings/config"
	"outings/models"
	"outings/store"
	"outings/users"
	"outings/utils"
)

func newUserService(t *testing.T, seed ...models.User) *users.Service {
	t.Helper()
	st := store.New[models.User](filepath.Join(t.TempDir(), "users.json"), "", zap.NewNop())
	st.Load()
	for _, u := range seed {
		st.Create(u)
	}
	return users.NewService(st, zap.NewNop())
}

func principalEcho() (httprouter.Handle, *string) {
	var seen string
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen = utils.GetUserIDFromRequest(r)
		w.WriteHeader(http.StatusOK)
	}, &seen
}

func TestOpenModeImpersonatesFirstUser(t *testing.T) {
	us := newUserService(t,
		models.User{ID: "user-1", Email: "first@example.com"},
		models.User{ID: "user-2", Email: "second@example.com"})
	auth := &Auth{Secret: []byte("secret"), Mode: config.OpenMode, Users: us, Log: zap.NewNop()}

	handler, seen := principalEcho()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	auth.Authenticate(handler)(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seen != "user-1" {
		t.Errorf("acting user = %q, want user-1", *seen)
	}
}

func TestOpenModeWithoutUsersFails(t *testing.T) {
	us := newUserService(t)
	auth := &Auth{Secret: []byte("secret"), Mode: config.OpenMode, Users: us, Log: zap.NewNop()}

	handler, _ := principalEcho()
	rec := httptest.NewRecorder()
	auth.Authenticate(handler)(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil), nil)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSecuredMode(t *testing.T) {
	us := newUserService(t, models.User{ID: "user-1", Email: "maya@example.com"})
	auth := &Auth{Secret: []byte("secret"), Mode: config.SecuredMode, Users: us, Log: zap.NewNop()}

	t.Run("missing token", func(t *testing.T) {
		handler, _ := principalEcho()
		rec := httptest.NewRecorder()
		auth.Authenticate(handler)(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil), nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		handler, _ := principalEcho()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		auth.Authenticate(handler)(rec, req, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := &Auth{Secret: []byte("different"), Mode: config.SecuredMode, Users: us, Log: zap.NewNop()}
		token, err := other.GenerateToken("user-1", "maya@example.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		handler, _ := principalEcho()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		auth.Authenticate(handler)(rec, req, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		token, err := auth.GenerateToken("user-1", "maya@example.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		claims, err := auth.ValidateToken(token)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if claims.UserID != "user-1" || claims.Email != "maya@example.com" {
			t.Errorf("claims = %+v", claims)
		}

		handler, seen := principalEcho()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		auth.Authenticate(handler)(rec, req, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if *seen != "user-1" {
			t.Errorf("acting user = %q, want user-1", *seen)
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	us := newUserService(t, models.User{ID: "user-1", Email: "maya@example.com"})
	auth := &Auth{Secret: []byte("secret"), Mode: config.SecuredMode, Users: us, Log: zap.NewNop()}

	t.Run("anonymous proceeds without principal", func(t *testing.T) {
		handler, seen := principalEcho()
		rec := httptest.NewRecorder()
		auth.OptionalAuth(handler)(rec, httptest.NewRequest(http.MethodGet, "/activities", nil), nil)
		if rec.Code != http.StatusOK || *seen != "" {
			t.Errorf("status = %d, principal = %q", rec.Code, *seen)
		}
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		token, _ := auth.GenerateToken("user-1", "maya@example.com")
		handler, seen := principalEcho()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/activities", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		auth.OptionalAuth(handler)(rec, req, nil)
		if *seen != "user-1" {
			t.Errorf("principal = %q, want user-1", *seen)
		}
	})
}
