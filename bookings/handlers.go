package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"outings/models"
	"outings/payments"
	"outings/utils"
)

// Handler exposes the booking orchestrator over HTTP.
type Handler struct {
	Svc           *Service
	SigningSecret []byte // receipt QR payloads are HMAC-signed with this
	Log           *zap.Logger
}

func NewHandler(svc *Service, signingSecret []byte, log *zap.Logger) *Handler {
	return &Handler{Svc: svc, SigningSecret: signingSecret, Log: log}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Request body must be a valid JSON object")
		return
	}

	if errs := h.Svc.ValidateCreate(req); len(errs) > 0 {
		utils.RespondWithValidationErrors(w, "Validation failed", errs)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	booking, err := h.Svc.Create(req, userID)
	var capErr *CapacityError
	switch {
	case errors.Is(err, ErrActivityNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
	case errors.As(err, &capErr):
		utils.RespondWithError(w, http.StatusBadRequest, capErr.Error())
	case errors.Is(err, payments.ErrPaymentFailed):
		utils.RespondWithError(w, http.StatusPaymentRequired, "Payment could not be processed")
	case err != nil:
		h.Log.Error("failed to create booking", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to create booking")
	default:
		utils.RespondWithJSON(w, http.StatusCreated, booking)
	}
}

// ListMine returns the caller's bookings, enriched with activity details.
// A booking whose activity was deleted afterwards is still listed, with an
// empty activity block.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	out := []models.BookingResponse{}
	for _, b := range h.Svc.AllByUserID(userID) {
		enriched, err := h.Svc.Enrich(b)
		if err != nil {
			h.Log.Warn("booking references missing activity",
				zap.String("bookingId", b.ID), zap.String("activityId", b.ActivityID))
			enriched = models.BookingResponse{
				ID:            b.ID,
				ActivityID:    b.ActivityID,
				UserID:        b.UserID,
				Participants:  b.Participants,
				CreatedAt:     b.CreatedAt,
				PaymentID:     b.PaymentID,
				PaymentStatus: h.Svc.PaymentStatusOf(b),
			}
		}
		out = append(out, enriched)
	}

	utils.RespondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	booking, err := h.Svc.UserBookingByID(ps.ByName("id"), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}

	enriched, err := h.Svc.Enrich(booking)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, enriched)
}
