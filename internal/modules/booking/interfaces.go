package booking

import (
	"context"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"
)

type BookingRepository interface {
	CreateWithReservation(ctx context.Context, b *domain.Booking, capacity int) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, adminNotes string) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	CancelWithRelease(ctx context.Context, b *domain.Booking, reason string) error
	List(ctx context.Context, f repository.BookingFilters) ([]domain.Booking, int64, error)
}

type TimeSlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// PaymentLedger lets cancellation open the refund workflow on a
// settled payment without the booking engine owning payment state.
type PaymentLedger interface {
	RefundForCancelledBooking(ctx context.Context, bookingID int64, reason string) (refunded bool, err error)
}
