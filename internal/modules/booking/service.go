package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	bookings   BookingRepository
	slots      TimeSlotRepository
	services   ServiceRepository
	facilities FacilityRepository
	payments   PaymentLedger // optional
}

func NewService(bookings BookingRepository, slots TimeSlotRepository, services ServiceRepository, facilities FacilityRepository, payments PaymentLedger) *Service {
	return &Service{
		bookings:   bookings,
		slots:      slots,
		services:   services,
		facilities: facilities,
		payments:   payments,
	}
}

// Create reserves participant capacity on a slot for a registered user
// (userID set) or a guest (contact details required). The price is
// always computed server-side from the current service price; the
// capacity check and the booking insert run atomically in storage, so
// two racing requests can never oversell the slot.
func (s *Service) Create(ctx context.Context, userID *int64, req CreateBookingRequest) (*domain.Booking, error) {
	if userID == nil {
		if req.GuestName == "" || (req.GuestEmail == "" && req.GuestPhone == "") {
			return nil, ErrGuestContactMissing
		}
	}

	slot, err := s.slots.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if !slot.IsActive || slot.ServiceID != req.ServiceID {
		return nil, ErrSlotNotFound
	}

	// Only approved facilities take bookings. A facility demoted after
	// its slots were published stops being bookable immediately.
	f, err := s.facilities.GetByID(ctx, slot.FacilityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	if f.Status != domain.FacilityApproved {
		return nil, ErrFacilityNotFound
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceNotFound
	}
	if req.Participants > svc.Capacity {
		return nil, ErrCapacityExceeded
	}

	b := &domain.Booking{
		FacilityID:    slot.FacilityID,
		ServiceID:     svc.ID,
		TimeSlotID:    slot.ID,
		UserID:        userID,
		Participants:  req.Participants,
		TotalAmount:   svc.Price * float64(req.Participants),
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
	}
	if userID == nil {
		b.GuestName = req.GuestName
		b.GuestEmail = req.GuestEmail
		b.GuestPhone = req.GuestPhone
	}

	if err := s.bookings.CreateWithReservation(ctx, b, svc.Capacity); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityExceeded):
			return nil, ErrCapacityExceeded
		case errors.Is(err, repository.ErrSlotInactive), errors.Is(err, gorm.ErrRecordNotFound):
			// The slot was deactivated or removed after the initial
			// load; that is a vanished slot, not exhausted capacity.
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByID returns one booking to its owner, the owning facility admin,
// or a superadmin.
func (s *Service) GetByID(ctx context.Context, id, actorID int64, role domain.Role) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, b, actorID, role); err != nil {
		return nil, err
	}
	return b, nil
}

// ChangeStatus applies an operator transition (confirm, complete,
// cancel). Only the admin owning the booking's facility, or a
// superadmin, may move a booking; the status machine rejects anything
// but pending→confirmed|cancelled and confirmed→completed|cancelled.
func (s *Service) ChangeStatus(ctx context.Context, id, actorID int64, role domain.Role, req UpdateStatusRequest) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOperator(ctx, b.FacilityID, actorID, role); err != nil {
		return nil, err
	}

	next := domain.BookingStatus(req.Status)
	if !b.CanTransitionTo(next) {
		if b.Status == domain.BookingCancelled && next == domain.BookingCancelled {
			return nil, ErrAlreadyCancelled
		}
		return nil, ErrInvalidTransition
	}

	if next == domain.BookingCancelled {
		reason := req.CancellationReason
		if reason == "" {
			reason = "cancelled by facility"
		}
		if err := s.cancel(ctx, b, reason); err != nil {
			return nil, err
		}
	} else {
		if err := s.bookings.UpdateStatus(ctx, id, next, req.AdminNotes); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, err
		}
		b.Status = next
		if req.AdminNotes != "" {
			b.AdminNotes = req.AdminNotes
		}
	}
	return b, nil
}

// Cancel lets the booking's owner cancel it with a reason. Guest
// bookings have no owner account and are cancelled by the facility.
func (s *Service) Cancel(ctx context.Context, id, actorID int64, role domain.Role, req CancelBookingRequest) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	owner := b.UserID != nil && *b.UserID == actorID
	if !owner && role != domain.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	if err := s.cancel(ctx, b, req.Reason); err != nil {
		return nil, err
	}
	return b, nil
}

// cancel releases the reserved capacity and, when the booking was
// already paid, opens the refund workflow on the ledger. The capacity
// release must not depend on the refund outcome.
func (s *Service) cancel(ctx context.Context, b *domain.Booking, reason string) error {
	wasPaid := b.PaymentStatus == domain.PaymentCompleted

	if err := s.bookings.CancelWithRelease(ctx, b, reason); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return ErrAlreadyCancelled
		case errors.Is(err, repository.ErrNotCancellable):
			return ErrInvalidTransition
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrBookingNotFound
		}
		return err
	}

	if wasPaid && s.payments != nil {
		refunded, err := s.payments.RefundForCancelledBooking(ctx, b.ID, reason)
		if err != nil {
			// The booking is already cancelled and the capacity
			// released; a refund failure is settled out-of-band.
			log.Printf("refund for booking %d failed: %v", b.ID, err)
			return nil
		}
		if refunded {
			if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, domain.PaymentRefunded); err != nil {
				log.Printf("marking booking %d refunded failed: %v", b.ID, err)
				return nil
			}
			b.PaymentStatus = domain.PaymentRefunded
		}
	}
	return nil
}

type ListQuery struct {
	FacilityID *int64
	Status     *domain.BookingStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
}

// ListForOperator returns bookings across the actor's facilities.
// Superadmins see every facility.
func (s *Service) ListForOperator(ctx context.Context, actorID int64, role domain.Role, q ListQuery) ([]domain.Booking, int64, error) {
	f := s.filters(q)
	if role != domain.RoleSuperAdmin {
		f.AdminID = &actorID
	}
	return s.bookings.List(ctx, f)
}

// ListForUser returns the actor's own bookings.
func (s *Service) ListForUser(ctx context.Context, userID int64, q ListQuery) ([]domain.Booking, int64, error) {
	f := s.filters(q)
	f.UserID = &userID
	return s.bookings.List(ctx, f)
}

func (s *Service) filters(q ListQuery) repository.BookingFilters {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	return repository.BookingFilters{
		FacilityID: q.FacilityID,
		Status:     q.Status,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
	}
}

func (s *Service) authorizeRead(ctx context.Context, b *domain.Booking, actorID int64, role domain.Role) error {
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
			return ErrBookingNotFound
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
