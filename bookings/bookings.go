package bookings

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"outings/activities"
	"outings/models"
	"outings/payments"
	"outings/store"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrActivityNotFound = errors.New("activity not found")
	// ErrNotFound covers both an absent booking and a booking owned by a
	// different user, so existence never leaks to non-owners.
	ErrNotFound = errors.New("booking not found")
)

// CapacityError reports a booking request that exceeds the remaining room on
// an activity. It carries both numbers.
type CapacityError struct {
	Available int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Capacity exceeded. Available: %d, Requested: %d", e.Available, e.Requested)
}

// Service orchestrates booking creation: validate, check capacity, charge,
// and only then persist. A booking is never visible in the store without a
// successful payment behind it.
type Service struct {
	// mu serializes the whole capacity-check-to-persist sequence. Each
	// request runs on its own goroutine, so without this two bookings could
	// observe the same remaining capacity and both commit.
	mu         sync.Mutex
	store      *store.Store[models.Booking]
	activities *activities.Service
	payments   *payments.Service
	log        *zap.Logger
}

func NewService(st *store.Store[models.Booking], act *activities.Service, pay *payments.Service, log *zap.Logger) *Service {
	return &Service{store: st, activities: act, payments: pay, log: log}
}

// ValidateCreate returns the complete list of field errors for a booking
// request.
func (s *Service) ValidateCreate(req models.CreateBookingRequest) []models.ValidationError {
	var errs []models.ValidationError

	if strings.TrimSpace(req.ActivityID) == "" {
		errs = append(errs, models.ValidationError{
			Field: "activityId", Message: "Activity ID is required and must be a non-empty string"})
	}
	if req.Participants < 1 {
		errs = append(errs, models.ValidationError{
			Field: "participants", Message: "Participants is required and must be a positive number (at least 1)"})
	}

	return errs
}

// BookingsByActivityID returns all bookings referencing the activity.
func (s *Service) BookingsByActivityID(activityID string) []models.Booking {
	var out []models.Booking
	for _, b := range s.store.GetAll() {
		if b.ActivityID == activityID {
			out = append(out, b)
		}
	}
	return out
}

// AvailableCapacity recomputes the remaining participant slots from the live
// sum of committed bookings. A missing activity has capacity 0.
func (s *Service) AvailableCapacity(activityID string) int {
	activity, ok := s.activities.GetByID(activityID)
	if !ok {
		return 0
	}

	booked := 0
	for _, b := range s.BookingsByActivityID(activityID) {
		booked += b.Participants
	}

	available := activity.MaxParticipants - booked
	if available < 0 {
		return 0
	}
	return available
}

// Create runs the booking transaction. The booking id is reserved before
// the charge so the charge context stays stable even when the charge is
// declined; a declined charge leaves no booking and no payment.
func (s *Service) Create(req models.CreateBookingRequest, userID string) (models.Booking, error) {
	if errs := s.ValidateCreate(req); len(errs) > 0 {
		return models.Booking{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.activities.GetByID(req.ActivityID)
	if !ok {
		return models.Booking{}, ErrActivityNotFound
	}

	participants := int(req.Participants)
	available := s.AvailableCapacity(req.ActivityID)
	if participants > available {
		return models.Booking{}, &CapacityError{Available: available, Requested: participants}
	}

	amount := activity.Price * float64(participants)
	bookingID := fmt.Sprintf("booking-%d", s.store.NextID())

	payment, err := s.payments.CreateForBooking(bookingID, amount, userID, req.ActivityID)
	if err != nil {
		return models.Booking{}, err
	}

	booking := models.Booking{
		ID:            bookingID,
		ActivityID:    req.ActivityID,
		UserID:        userID,
		Participants:  participants,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		PaymentID:     payment.ID,
		PaymentStatus: models.PaymentPaid,
	}

	s.store.Create(booking)
	s.log.Info("booking created",
		zap.String("id", bookingID),
		zap.String("activityId", req.ActivityID),
		zap.Int("participants", participants),
		zap.String("paymentId", payment.ID))
	return booking, nil
}

// AllByUserID returns the user's bookings in collection order.
func (s *Service) AllByUserID(userID string) []models.Booking {
	var out []models.Booking
	for _, b := range s.store.GetAll() {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

func (s *Service) GetByID(id string) (models.Booking, bool) {
	return s.store.GetByID(id)
}

// UserBookingByID resolves a booking for its owner. Absent and
// present-but-not-yours both return ErrNotFound.
func (s *Service) UserBookingByID(id, userID string) (models.Booking, error) {
	booking, ok := s.store.GetByID(id)
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	if booking.UserID != userID {
		return models.Booking{}, ErrNotFound
	}
	return booking, nil
}

// Enrich joins a booking with its activity's descriptive fields. Read path
// only: the stored booking is never mutated. A dangling activity reference
// (activity deleted after booking) fails with ErrActivityNotFound.
func (s *Service) Enrich(booking models.Booking) (models.BookingResponse, error) {
	activity, ok := s.activities.GetByID(booking.ActivityID)
	if !ok {
		return models.BookingResponse{}, ErrActivityNotFound
	}

	return models.BookingResponse{
		ID:            booking.ID,
		ActivityID:    booking.ActivityID,
		UserID:        booking.UserID,
		Participants:  booking.Participants,
		CreatedAt:     booking.CreatedAt,
		PaymentID:     booking.PaymentID,
		PaymentStatus: s.PaymentStatusOf(booking),
		Activity: models.BookingActivityInfo{
			Name:     activity.Name,
			Slug:     activity.Slug,
			Price:    activity.Price,
			Date:     activity.Date,
			Duration: activity.Duration,
			Location: activity.Location,
			Status:   activity.Status,
		},
	}, nil
}

// PaymentStatusOf resolves the presentation payment status: the stored value
// when present, otherwise pending.
func (s *Service) PaymentStatusOf(booking models.Booking) string {
	if booking.PaymentStatus != "" {
		return booking.PaymentStatus
	}
	return models.PaymentPending
}
