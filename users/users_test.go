package users

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"outings/models"
	"outings/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st := store.New[models.User](filepath.Join(t.TempDir(), "users.json"), "", zap.NewNop())
	st.Load()
	return NewService(st, zap.NewNop())
}

func validRegistration() models.CreateUserRequest {
	return models.CreateUserRequest{
		Username: "maya",
		Email:    "maya@example.com",
		Password: "hunter2x",
		Terms:    true,
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(validRegistration())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != "user-1" {
		t.Errorf("first id = %q, want user-1", first.ID)
	}

	second := validRegistration()
	second.Email = "liam@example.com"
	created, err := svc.Create(second)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if created.ID != "user-2" {
		t.Errorf("second id = %q, want user-2", created.ID)
	}
}

func TestCreateLowercasesEmailAndRejectsDuplicates(t *testing.T) {
	svc := newTestService(t)

	req := validRegistration()
	req.Email = "Maya@Example.COM"
	user, err := svc.Create(req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "maya@example.com" {
		t.Errorf("stored email = %q, want lowercased", user.Email)
	}

	dup := validRegistration()
	dup.Email = "MAYA@example.com"
	if _, err := svc.Create(dup); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}
}

func TestConcurrentRegistrationsKeepEmailUnique(t *testing.T) {
	svc := newTestService(t)

	const attempts = 8
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(validRegistration())
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	succeeded := 0
	for err := range errCh {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d registrations succeeded for one email, want 1", succeeded)
	}
	if svc.Count() != 1 {
		t.Errorf("stored users = %d, want 1", svc.Count())
	}
}

func TestValidateRegisterReportsEveryError(t *testing.T) {
	svc := newTestService(t)

	errs := svc.ValidateRegister(models.CreateUserRequest{
		Username: "  ",
		Email:    "not-an-email",
		Password: "short",
		Terms:    false,
	})

	want := map[string]bool{"username": true, "email": true, "password": true, "terms": true}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors, want %d: %+v", len(errs), len(want), errs)
	}
	for _, e := range errs {
		if !want[e.Field] {
			t.Errorf("unexpected field %q", e.Field)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Create(validRegistration()); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(models.LoginRequest{
			Email: "maya@example.com", Password: "hunter2x"})
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
		if user.ID != "user-1" {
			t.Errorf("user id = %q", user.ID)
		}
	})

	t.Run("email case does not matter", func(t *testing.T) {
		if _, err := svc.Authenticate(models.LoginRequest{
			Email: "MAYA@example.com", Password: "hunter2x"}); err != nil {
			t.Fatalf("authenticate: %v", err)
		}
	})

	t.Run("wrong password and unknown email look alike", func(t *testing.T) {
		_, wrongPass := svc.Authenticate(models.LoginRequest{
			Email: "maya@example.com", Password: "nope-nope"})
		_, unknown := svc.Authenticate(models.LoginRequest{
			Email: "ghost@example.com", Password: "hunter2x"})
		if !errors.Is(wrongPass, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
			t.Errorf("wrong password = %v, unknown email = %v, want ErrInvalidCredentials for both",
				wrongPass, unknown)
		}
	})
}

func TestFirstAndCount(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.First(); !errors.Is(err, ErrNoUsers) {
		t.Errorf("First on empty store = %v, want ErrNoUsers", err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count = %d, want 0", svc.Count())
	}

	if _, err := svc.Create(validRegistration()); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := validRegistration()
	second.Email = "liam@example.com"
	if _, err := svc.Create(second); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if first.ID != "user-1" {
		t.Errorf("First id = %q, want user-1", first.ID)
	}
	if svc.Count() != 2 {
		t.Errorf("Count = %d, want 2", svc.Count())
	}
}
