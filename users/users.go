package users

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"outings/models"
	"outings/store"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoUsers            = errors.New("no users available")
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service owns User entities. Emails are lowercased and unique; the
// secondary email index is rebuilt on startup and maintained in lockstep
// with the store.
type Service struct {
	// mu guards emailIndex and makes the uniqueness check and the insert
	// one critical section under concurrent registrations.
	mu         sync.Mutex
	store      *store.Store[models.User]
	emailIndex map[string]string // email -> userId
	log        *zap.Logger
}

func NewService(st *store.Store[models.User], log *zap.Logger) *Service {
	s := &Service{
		store:      st,
		emailIndex: make(map[string]string),
		log:        log,
	}
	for _, u := range st.GetAll() {
		s.emailIndex[strings.ToLower(u.Email)] = u.ID
	}
	return s
}

// Create registers a new user. The password is stored exactly as given; the
// store treats it as an opaque value.
func (s *Service) Create(req models.CreateUserRequest) (models.User, error) {
	if errs := s.ValidateRegister(req); len(errs) > 0 {
		return models.User{}, ErrValidation
	}

	email := strings.ToLower(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emailIndex[email]; taken {
		return models.User{}, ErrEmailTaken
	}

	user := models.User{
		ID:        fmt.Sprintf("user-%d", s.store.NextID()),
		Username:  req.Username,
		Email:     email,
		Password:  req.Password,
		Terms:     req.Terms,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.store.Create(user)
	s.emailIndex[email] = user.ID
	s.log.Info("user created", zap.String("id", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *Service) GetByID(id string) (models.User, bool) {
	return s.store.GetByID(id)
}

func (s *Service) GetByEmail(email string) (models.User, bool) {
	s.mu.Lock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		return models.User{}, false
	}
	return s.store.GetByID(id)
}

// First returns the first user in collection order. Open security mode acts
// as this user.
func (s *Service) First() (models.User, error) {
	all := s.store.GetAll()
	if len(all) == 0 {
		return models.User{}, ErrNoUsers
	}
	return all[0], nil
}

// Count reports how many users exist.
func (s *Service) Count() int {
	return len(s.store.GetAll())
}

// Authenticate checks credentials and returns the user. The same error
// covers unknown email and wrong password.
func (s *Service) Authenticate(req models.LoginRequest) (models.User, error) {
	if errs := s.ValidateLogin(req); len(errs) > 0 {
		return models.User{}, ErrValidation
	}

	user, ok := s.GetByEmail(req.Email)
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		return models.User{}, ErrInvalidCredentials
	}

	s.log.Info("user authenticated", zap.String("id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// ValidateRegister returns every field error in the registration payload.
func (s *Service) ValidateRegister(req models.CreateUserRequest) []models.ValidationError {
	var errs []models.ValidationError

	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, models.ValidationError{
			Field: "username", Message: "Username is required and must be a non-empty string"})
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, models.ValidationError{
			Field: "email", Message: "Email is required and must be a non-empty string"})
	} else if !emailRE.MatchString(req.Email) {
		errs = append(errs, models.ValidationError{
			Field: "email", Message: "Email must be a valid email address"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, models.ValidationError{
			Field: "password", Message: "Password is required and must be at least 6 characters long"})
	}
	if !req.Terms {
		errs = append(errs, models.ValidationError{
			Field: "terms", Message: "Terms acceptance is required"})
	}

	return errs
}

// ValidateLogin returns every field error in the login payload.
func (s *Service) ValidateLogin(req models.LoginRequest) []models.ValidationError {
	var errs []models.ValidationError

	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, models.ValidationError{
			Field: "email", Message: "Email is required and must be a non-empty string"})
	}
	if strings.TrimSpace(req.Password) == "" {
		errs = append(errs, models.ValidationError{
			Field: "password", Message: "Password is required and must be a non-empty string"})
	}

	return errs
}
