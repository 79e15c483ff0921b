package payments

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"outings/models"
	"outings/store"
)

// ErrPaymentFailed reports a declined charge. No payment record exists when
// this is returned.
var ErrPaymentFailed = errors.New("payment could not be processed")

// Service is the payment ledger: charge first, record only on success.
type Service struct {
	store   *store.Store[models.Payment]
	gateway Gateway
	log     *zap.Logger
}

func NewService(st *store.Store[models.Payment], gw Gateway, log *zap.Logger) *Service {
	return &Service{store: st, gateway: gw, log: log}
}

// CreateForBooking charges the gateway and persists a paid payment record.
// A declined charge returns ErrPaymentFailed and leaves no partial state.
func (s *Service) CreateForBooking(bookingID string, amount float64, userID, activityID string) (models.Payment, error) {
	result := s.gateway.Charge(amount, models.ChargeContext{
		UserID:     userID,
		BookingID:  bookingID,
		ActivityID: activityID,
	})
	if !result.Success {
		return models.Payment{}, ErrPaymentFailed
	}

	payment := models.Payment{
		ID:        fmt.Sprintf("payment-%d", s.store.NextID()),
		BookingID: bookingID,
		Amount:    amount,
		Status:    models.PaymentPaid,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.store.Create(payment)
	s.log.Info("payment created",
		zap.String("id", payment.ID),
		zap.String("bookingId", bookingID),
		zap.Float64("amount", amount))
	return payment, nil
}

func (s *Service) GetByID(id string) (models.Payment, bool) {
	return s.store.GetByID(id)
}

// GetAll returns every payment in ledger order.
func (s *Service) GetAll() []models.Payment {
	return s.store.GetAll()
}
