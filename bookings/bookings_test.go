package bookings

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"outings/activities"
	"outings/models"
	"outings/payments"
	"outings/store"
)

type fixture struct {
	bookings   *Service
	activities *activities.Service
	payments   *payments.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	log := zap.NewNop()

	activityStore := store.New[models.Activity](filepath.Join(dir, "activities.json"), "", log)
	bookingStore := store.New[models.Booking](filepath.Join(dir, "bookings.json"), "", log)
	paymentStore := store.New[models.Payment](filepath.Join(dir, "payments.json"), "", log)
	activityStore.Load()
	bookingStore.Load()
	paymentStore.Load()

	activitySvc := activities.NewService(activityStore, log)
	paymentSvc := payments.NewService(paymentStore, payments.NewMockGateway(log), log)

	return &fixture{
		bookings:   NewService(bookingStore, activitySvc, paymentSvc, log),
		activities: activitySvc,
		payments:   paymentSvc,
	}
}

func (f *fixture) createActivity(t *testing.T, price float64, maxParticipants int) models.Activity {
	t.Helper()
	activity, err := f.activities.Create(models.CreateActivityRequest{
		Name:            "Canyon Rafting",
		Price:           models.FlexFloat(price),
		Date:            "2099-06-15T08:00:00Z",
		Location:        "Soca Valley",
		MinParticipants: 1,
		MaxParticipants: models.FlexInt(maxParticipants),
	}, "owner-1")
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	return activity
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newFixture(t)
	activity := f.createActivity(t, 45, 8)

	booking, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 3}, "user-1")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.ID != "booking-1" {
		t.Errorf("id = %q, want booking-1", booking.ID)
	}
	if booking.PaymentID != "payment-1" {
		t.Errorf("paymentId = %q, want payment-1", booking.PaymentID)
	}
	if booking.PaymentStatus != models.PaymentPaid {
		t.Errorf("paymentStatus = %q, want paid", booking.PaymentStatus)
	}

	payment, ok := f.payments.GetByID(booking.PaymentID)
	if !ok {
		t.Fatal("payment record missing")
	}
	if payment.Amount != 135 {
		t.Errorf("amount = %v, want price*participants = 135", payment.Amount)
	}
	if payment.BookingID != booking.ID {
		t.Errorf("payment bookingId = %q", payment.BookingID)
	}
}

func TestCapacityIsRecomputedFromCommittedBookings(t *testing.T) {
	f := newFixture(t)
	activity := f.createActivity(t, 45, 5)

	if _, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 3}, "user-1"); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if got := f.bookings.AvailableCapacity(activity.ID); got != 2 {
		t.Fatalf("available = %d, want 2", got)
	}

	_, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 3}, "user-2")
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("err = %v, want CapacityError", err)
	}
	if capErr.Available != 2 || capErr.Requested != 3 {
		t.Errorf("capacity error = %+v, want Available 2 Requested 3", capErr)
	}
	if capErr.Error() != "Capacity exceeded. Available: 2, Requested: 3" {
		t.Errorf("message = %q", capErr.Error())
	}

	// the exact remainder still fits
	if _, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 2}, "user-2"); err != nil {
		t.Fatalf("remainder booking: %v", err)
	}
	if got := f.bookings.AvailableCapacity(activity.ID); got != 0 {
		t.Errorf("available = %d, want 0", got)
	}
}

func TestConcurrentCreatesNeverOversell(t *testing.T) {
	f := newFixture(t)
	activity := f.createActivity(t, 45, 1)

	const attempts = 8
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bookings.Create(models.CreateBookingRequest{
				ActivityID: activity.ID, Participants: 1}, "user-1")
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
		var capErr *CapacityError
		if !errors.As(err, &capErr) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d bookings succeeded against maxParticipants=1, want 1", succeeded)
	}

	booked := 0
	for _, b := range f.bookings.BookingsByActivityID(activity.ID) {
		booked += b.Participants
	}
	if booked != 1 {
		t.Errorf("participants booked = %d, want 1", booked)
	}
}

func TestDeclinedChargeLeavesNoBookingAndNoPayment(t *testing.T) {
	f := newFixture(t)
	activity := f.createActivity(t, 500, 10)

	// 500 * 2 = 1000, which the gateway declines
	_, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 2}, "user-1")
	if !errors.Is(err, payments.ErrPaymentFailed) {
		t.Fatalf("err = %v, want ErrPaymentFailed", err)
	}
	if got := f.bookings.BookingsByActivityID(activity.ID); len(got) != 0 {
		t.Errorf("bookings after decline = %d, want 0", len(got))
	}
	if got := f.payments.GetAll(); len(got) != 0 {
		t.Errorf("payments after decline = %d, want 0", len(got))
	}
	if got := f.bookings.AvailableCapacity(activity.ID); got != 10 {
		t.Errorf("available = %d, want untouched 10", got)
	}

	// 500 * 1 = 500 goes through afterwards
	booking, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 1}, "user-1")
	if err != nil {
		t.Fatalf("retry booking: %v", err)
	}
	if booking.PaymentStatus != models.PaymentPaid {
		t.Errorf("paymentStatus = %q", booking.PaymentStatus)
	}
}

func TestCreateBookingUnknownActivity(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: "activity-404", Participants: 1}, "user-1")
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("err = %v, want ErrActivityNotFound", err)
	}
}

func TestValidateCreate(t *testing.T) {
	f := newFixture(t)
	errs := f.bookings.ValidateCreate(models.CreateBookingRequest{ActivityID: " ", Participants: 0})
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %+v", len(errs), errs)
	}
}

func TestUserBookingByIDHidesOtherUsersBookings(t *testing.T) {
	f := newFixture(t)
	activity := f.createActivity(t, 45, 8)
	booking, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 1}, "user-1")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if _, err := f.bookings.UserBookingByID(booking.ID, "user-1"); err != nil {
		t.Errorf("owner lookup: %v", err)
	}

	_, notYours := f.bookings.UserBookingByID(booking.ID, "user-2")
	_, absent := f.bookings.UserBookingByID("booking-404", "user-1")
	if !errors.Is(notYours, ErrNotFound) || !errors.Is(absent, ErrNotFound) {
		t.Errorf("notYours = %v, absent = %v, want ErrNotFound for both", notYours, absent)
	}
}

func TestEnrich(t *testing.T) {
	f := newFixture(t)
	activity := f.createActivity(t, 45, 8)
	booking, err := f.bookings.Create(models.CreateBookingRequest{
		ActivityID: activity.ID, Participants: 2}, "user-1")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	enriched, err := f.bookings.Enrich(booking)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if enriched.Activity.Name != "Canyon Rafting" || enriched.Activity.Slug != "canyon-rafting" {
		t.Errorf("activity block = %+v", enriched.Activity)
	}
	if enriched.PaymentStatus != models.PaymentPaid {
		t.Errorf("paymentStatus = %q", enriched.PaymentStatus)
	}

	t.Run("missing payment status presents as pending", func(t *testing.T) {
		legacy := models.Booking{ID: "booking-9", ActivityID: activity.ID, UserID: "user-1", Participants: 1}
		if got := f.bookings.PaymentStatusOf(legacy); got != models.PaymentPending {
			t.Errorf("status = %q, want pending", got)
		}
	})

	t.Run("dangling activity reference", func(t *testing.T) {
		if _, err := f.activities.Delete(activity.ID, "owner-1"); err != nil {
			t.Fatalf("delete activity: %v", err)
		}
		if _, err := f.bookings.Enrich(booking); !errors.Is(err, ErrActivityNotFound) {
			t.Errorf("err = %v, want ErrActivityNotFound", err)
		}
	})
}
