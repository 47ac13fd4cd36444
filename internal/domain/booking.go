package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Booking reserves participant capacity on one time slot. It references
// facility, service and slot by identifier only; BookingEngine is the
// sole writer of TimeSlot.BookedCount.
type Booking struct {
	ID         int64  `json:"id"`
	FacilityID int64  `json:"facility_id"`
	ServiceID  int64  `json:"service_id"`
	TimeSlotID int64  `json:"time_slot_id"`
	UserID     *int64 `json:"user_id,omitempty"`

	// Guest contact, set when UserID is nil.
	GuestName  string `json:"guest_name,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`
	GuestPhone string `json:"guest_phone,omitempty"`

	Participants  int           `json:"participants"`
	TotalAmount   float64       `json:"total_amount"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	AdminNotes         string     `json:"admin_notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsGuest reports whether the booking was made without a registered user.
func (b *Booking) IsGuest() bool {
	return b.UserID == nil
}

// IsTerminal reports whether the status can no longer change.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCancelled || b.Status == BookingCompleted
}

// CanTransitionTo encodes the booking status machine: pending may be
// confirmed or cancelled, confirmed may be completed or cancelled,
// cancelled and completed are terminal.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	default:
		return false
	}
}
