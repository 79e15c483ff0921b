package payments

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"outings/models"
	"outings/utils"
)

// BookingResolver looks up the booking a payment belongs to, for the
// ownership check.
type BookingResolver interface {
	GetByID(id string) (models.Booking, bool)
}

// Handler exposes payment lookups over HTTP.
type Handler struct {
	Svc      *Service
	Bookings BookingResolver
	Log      *zap.Logger
}

func NewHandler(svc *Service, bookings BookingResolver, log *zap.Logger) *Handler {
	return &Handler{Svc: svc, Bookings: bookings, Log: log}
}

// GetPayment returns a payment to the owner of its booking. Absent and
// not-yours answer identically so existence never leaks.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	payment, ok := h.Svc.GetByID(ps.ByName("id"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Payment not found")
		return
	}

	booking, ok := h.Bookings.GetByID(payment.BookingID)
	if !ok || booking.UserID != userID {
		utils.RespondWithError(w, http.StatusNotFound, "Payment not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, payment)
}
