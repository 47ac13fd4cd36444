package payment

import (
	"context"
	"errors"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	payments   PaymentRepository
	bookings   BookingRepository
	facilities FacilityRepository
}

func NewService(payments PaymentRepository, bookings BookingRepository, facilities FacilityRepository) *Service {
	return &Service{
		payments:   payments,
		bookings:   bookings,
		facilities: facilities,
	}
}

// Create opens the ledger record for a booking. The amount is copied
// from the booking, never taken from the request, and the generated
// transaction ID becomes the idempotency key for provider callbacks.
// A booking holds at most one payment; the unique index enforces it
// under races.
func (s *Service) Create(ctx context.Context, actorID int64, role domain.Role, req CreatePaymentRequest) (*domain.Payment, error) {
	b, err := s.loadBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, b, actorID, role); err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrBookingCancelled
	}

	p := &domain.Payment{
		BookingID:     b.ID,
		Amount:        b.TotalAmount,
		Method:        domain.PaymentMethod(req.Method),
		TransactionID: uuid.NewString(),
		Status:        domain.PaymentPending,
	}

	if err := s.payments.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrPaymentExists
		}
		return nil, err
	}
	return p, nil
}

// HandleCallback settles a pending payment from a provider
// notification. Redelivered callbacks find the payment already settled
// and return it unchanged.
func (s *Service) HandleCallback(ctx context.Context, req CallbackRequest) (*domain.Payment, error) {
	p, err := s.payments.GetByTransactionID(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if p.Status != domain.PaymentPending {
		return p, nil
	}

	next := domain.PaymentFailed
	if req.Status == "success" {
		next = domain.PaymentCompleted
	}

	if err := s.payments.UpdateStatus(ctx, p.ID, next); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, p.BookingID, next); err != nil {
		return nil, err
	}
	p.Status = next
	return p, nil
}

// Refund reverses a completed payment at the operator's request and
// mirrors the state onto the booking.
func (s *Service) Refund(ctx context.Context, paymentID, actorID int64, role domain.Role, req RefundRequest) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	b, err := s.loadBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOperator(ctx, b.FacilityID, actorID, role); err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentCompleted {
		return nil, ErrNotRefundable
	}

	rd := domain.RefundDetails{
		Amount:              p.Amount,
		Reason:              req.Reason,
		RefundedAt:          time.Now(),
		RefundTransactionID: uuid.NewString(),
	}
	if err := s.payments.ApplyRefund(ctx, p.ID, rd); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, p.BookingID, domain.PaymentRefunded); err != nil {
		return nil, err
	}

	p.Status = domain.PaymentRefunded
	p.RefundDetails = &rd
	return p, nil
}

// RefundForCancelledBooking opens a refund when a paid booking is
// cancelled. Unpaid or unsettled bookings refund nothing; that is not
// an error.
func (s *Service) RefundForCancelledBooking(ctx context.Context, bookingID int64, reason string) (bool, error) {
	p, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if p.Status != domain.PaymentCompleted {
		return false, nil
	}

	rd := domain.RefundDetails{
		Amount:              p.Amount,
		Reason:              reason,
		RefundedAt:          time.Now(),
		RefundTransactionID: uuid.NewString(),
	}
	if err := s.payments.ApplyRefund(ctx, p.ID, rd); err != nil {
		return false, err
	}
	return true, nil
}

// GetByBooking returns the ledger record for one booking to its owner,
// the owning facility admin, or a superadmin.
func (s *Service) GetByBooking(ctx context.Context, bookingID, actorID int64, role domain.Role) (*domain.Payment, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, b, actorID, role); err != nil {
		return nil, err
	}

	p, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) authorize(ctx context.Context, b *domain.Booking, actorID int64, role domain.Role) error {
	if role == domain.RoleSuperAdmin {
		return nil
	}
	if b.UserID != nil && *b.UserID == actorID {
		return nil
	}
	if role == domain.RoleAdmin {
		f, err := s.facilities.GetByID(ctx, b.FacilityID)
		if err == nil && f.AdminID == actorID {
			return nil
		}
	}
	return ErrForbidden
}

func (s *Service) authorizeOperator(ctx context.Context, facilityID, actorID int64, role domain.Role) error {
	if role == domain.RoleSuperAdmin {
		return nil
	}
	f, err := s.facilities.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if f.AdminID != actorID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) loadBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}
