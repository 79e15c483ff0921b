package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"outings/middleware"
	"outings/models"
	"outings/users"
	"outings/utils"
)

// Handler serves registration and login. Both respond with the user mapped
// to its external numeric-id shape plus a fresh access token.
type Handler struct {
	Users *users.Service
	Auth  *middleware.Auth
	Log   *zap.Logger
}

func NewHandler(us *users.Service, auth *middleware.Auth, log *zap.Logger) *Handler {
	return &Handler{Users: us, Auth: auth, Log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Request body must be a valid JSON object")
		return
	}

	if errs := h.Users.ValidateRegister(req); len(errs) > 0 {
		utils.RespondWithValidationErrors(w, "Validation failed", errs)
		return
	}

	user, err := h.Users.Create(req)
	if errors.Is(err, users.ErrEmailTaken) {
		utils.RespondWithValidationErrors(w, "Email is already registered", []models.ValidationError{
			{Field: "email", Message: "Email is already registered"},
		})
		return
	}
	if err != nil {
		h.Log.Error("failed to register user", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to register user")
		return
	}

	h.respondWithAuth(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Request body must be a valid JSON object")
		return
	}

	if errs := h.Users.ValidateLogin(req); len(errs) > 0 {
		utils.RespondWithValidationErrors(w, "Validation failed", errs)
		return
	}

	user, err := h.Users.Authenticate(req)
	if err != nil {
		h.Log.Warn("failed login attempt", zap.String("email", req.Email))
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.respondWithAuth(w, http.StatusOK, user)
}

func (h *Handler) respondWithAuth(w http.ResponseWriter, status int, user models.User) {
	token, err := h.Auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.Log.Error("failed to generate token", zap.String("userId", user.ID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, status, models.AuthResponse{
		User: models.ApiUserDto{
			ID:       utils.NumericID(user.ID),
			Username: user.Username,
			Email:    user.Email,
			Terms:    user.Terms,
		},
		AccessToken: token,
	})
}
