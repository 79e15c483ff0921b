package models

// Activity status values. Any member can be set from any other; the enum
// itself is the only gate (see activities.Service.TransitionStatus).
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusConfirmed = "confirmed"
	StatusSoldOut   = "sold-out"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

var ActivityStatuses = []string{
	StatusDraft, StatusPublished, StatusConfirmed,
	StatusSoldOut, StatusDone, StatusCancelled,
}

func IsActivityStatus(s string) bool {
	for _, v := range ActivityStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Payment status values.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"` // opaque, stored exactly as received
	Terms     bool   `json:"terms"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (u User) EntityID() string { return u.ID }

type Activity struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Price           float64 `json:"price"`
	Date            string  `json:"date"` // ISO timestamp
	Duration        int     `json:"duration"` // minutes
	Location        string  `json:"location"`
	MinParticipants int     `json:"minParticipants"`
	MaxParticipants int     `json:"maxParticipants"`
	Status          string  `json:"status"`
	UserID          string  `json:"userId"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}

func (a Activity) EntityID() string { return a.ID }

type Booking struct {
	ID            string `json:"id"`
	ActivityID    string `json:"activityId"`
	UserID        string `json:"userId"`
	Participants  int    `json:"participants"`
	CreatedAt     string `json:"createdAt"`
	PaymentID     string `json:"paymentId,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
}

func (b Booking) EntityID() string { return b.ID }

type Payment struct {
	ID        string  `json:"id"`
	BookingID string  `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

func (p Payment) EntityID() string { return p.ID }

// ChargeContext is passed to the payment gateway for audit logging only;
// it never influences the charge decision.
type ChargeContext struct {
	UserID     string
	BookingID  string
	ActivityID string
}

type ChargeResult struct {
	Success bool
}
