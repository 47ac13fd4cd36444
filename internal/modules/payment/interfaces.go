package payment

import (
	"context"

	"facilitybook/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	ApplyRefund(ctx context.Context, id int64, rd domain.RefundDetails) error
}

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}
