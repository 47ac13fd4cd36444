package booking

import (
	"context"
	"testing"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateWithReservation(ctx context.Context, b *domain.Booking, capacity int) error {
	args := m.Called(ctx, b, capacity)
	if args.Error(0) == nil && b != nil {
		b.ID = 999
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, adminNotes string) error {
	args := m.Called(ctx, id, status, adminNotes)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) CancelWithRelease(ctx context.Context, b *domain.Booking, reason string) error {
	args := m.Called(ctx, b, reason)
	if args.Error(0) == nil && b != nil {
		b.Status = domain.BookingCancelled
		b.CancellationReason = reason
	}
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, f repository.BookingFilters) ([]domain.Booking, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int64), args.Error(2)
}

type MockTimeSlotRepository struct {
	mock.Mock
}

func (m *MockTimeSlotRepository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Facility), args.Error(1)
}

type MockPaymentLedger struct {
	mock.Mock
}

func (m *MockPaymentLedger) RefundForCancelledBooking(ctx context.Context, bookingID int64, reason string) (bool, error) {
	args := m.Called(ctx, bookingID, reason)
	return args.Bool(0), args.Error(1)
}

func activeSlot() *domain.TimeSlot {
	return &domain.TimeSlot{
		ID:         20,
		FacilityID: 5,
		ServiceID:  10,
		StartTime:  "10:00",
		EndTime:    "11:00",
		IsActive:   true,
	}
}

func courtService() *domain.Service {
	return &domain.Service{
		ID:         10,
		FacilityID: 5,
		Name:       "Badminton court",
		Price:      4000,
		Capacity:   4,
		IsActive:   true,
	}
}

func approvedFacility() *MockFacilityRepository {
	facilities := new(MockFacilityRepository)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, AdminID: 2, Status: domain.FacilityApproved,
	}, nil).Maybe()
	return facilities
}

func TestService_Create_PriceComputedFromService(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	services := new(MockServiceRepository)
	bookings := new(MockBookingRepository)

	slots.On("GetByID", mock.Anything, int64(20)).Return(activeSlot(), nil)
	services.On("GetByID", mock.Anything, int64(10)).Return(courtService(), nil)
	bookings.On("CreateWithReservation", mock.Anything, mock.Anything, 4).Return(nil)

	svc := NewService(bookings, slots, services, approvedFacility(), nil)

	userID := int64(7)
	b, err := svc.Create(context.Background(), &userID, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    10,
		Participants: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, 8000.0, b.TotalAmount)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
	assert.Equal(t, int64(7), *b.UserID)
}

func TestService_Create_GuestWithoutContact(t *testing.T) {
	svc := NewService(new(MockBookingRepository), new(MockTimeSlotRepository), new(MockServiceRepository), new(MockFacilityRepository), nil)

	_, err := svc.Create(context.Background(), nil, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    10,
		Participants: 1,
		GuestName:    "Guest",
	})

	assert.ErrorIs(t, err, ErrGuestContactMissing)
}

func TestService_Create_GuestWithContact(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	services := new(MockServiceRepository)
	bookings := new(MockBookingRepository)

	slots.On("GetByID", mock.Anything, int64(20)).Return(activeSlot(), nil)
	services.On("GetByID", mock.Anything, int64(10)).Return(courtService(), nil)
	bookings.On("CreateWithReservation", mock.Anything, mock.Anything, 4).Return(nil)

	svc := NewService(bookings, slots, services, approvedFacility(), nil)

	b, err := svc.Create(context.Background(), nil, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    10,
		Participants: 1,
		GuestName:    "Guest",
		GuestPhone:   "+7 777 000 0000",
	})

	assert.NoError(t, err)
	assert.Nil(t, b.UserID)
	assert.Equal(t, "Guest", b.GuestName)
}

func TestService_Create_InactiveSlot(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	inactive := activeSlot()
	inactive.IsActive = false
	slots.On("GetByID", mock.Anything, int64(20)).Return(inactive, nil)

	svc := NewService(new(MockBookingRepository), slots, new(MockServiceRepository), new(MockFacilityRepository), nil)

	userID := int64(7)
	_, err := svc.Create(context.Background(), &userID, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    10,
		Participants: 1,
	})

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestService_Create_SlotServiceMismatch(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	slots.On("GetByID", mock.Anything, int64(20)).Return(activeSlot(), nil)

	svc := NewService(new(MockBookingRepository), slots, new(MockServiceRepository), new(MockFacilityRepository), nil)

	userID := int64(7)
	_, err := svc.Create(context.Background(), &userID, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    11, // slot belongs to service 10
		Participants: 1,
	})

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestService_Create_ParticipantsAboveCapacity(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	services := new(MockServiceRepository)
	slots.On("GetByID", mock.Anything, int64(20)).Return(activeSlot(), nil)
	services.On("GetByID", mock.Anything, int64(10)).Return(courtService(), nil)

	svc := NewService(new(MockBookingRepository), slots, services, approvedFacility(), nil)

	userID := int64(7)
	_, err := svc.Create(context.Background(), &userID, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    10,
		Participants: 5, // capacity is 4
	})

	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestService_Create_UnapprovedFacilityNotBookable(t *testing.T) {
	for _, status := range []domain.FacilityStatus{domain.FacilityPending, domain.FacilityRejected} {
		slots := new(MockTimeSlotRepository)
		facilities := new(MockFacilityRepository)
		bookings := new(MockBookingRepository)

		slots.On("GetByID", mock.Anything, int64(20)).Return(activeSlot(), nil)
		facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
			ID: 5, AdminID: 2, Status: status,
		}, nil)

		svc := NewService(bookings, slots, new(MockServiceRepository), facilities, nil)

		userID := int64(7)
		_, err := svc.Create(context.Background(), &userID, CreateBookingRequest{
			TimeSlotID:   20,
			ServiceID:    10,
			Participants: 1,
		})

		assert.ErrorIs(t, err, ErrFacilityNotFound, "status %s", status)
		bookings.AssertNotCalled(t, "CreateWithReservation", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestService_Create_SlotDeactivatedDuringReservation(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	services := new(MockServiceRepository)
	bookings := new(MockBookingRepository)

	slots.On("GetByID", mock.Anything, int64(20)).Return(activeSlot(), nil)
	services.On("GetByID", mock.Anything, int64(10)).Return(courtService(), nil)
	bookings.On("CreateWithReservation", mock.Anything, mock.Anything, 4).Return(repository.ErrSlotInactive)

	svc := NewService(bookings, slots, services, approvedFacility(), nil)

	userID := int64(7)
	_, err := svc.Create(context.Background(), &userID, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    10,
		Participants: 1,
	})

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestService_Create_CapacityExhausted(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	services := new(MockServiceRepository)
	bookings := new(MockBookingRepository)

	slots.On("GetByID", mock.Anything, int64(20)).Return(activeSlot(), nil)
	services.On("GetByID", mock.Anything, int64(10)).Return(courtService(), nil)
	bookings.On("CreateWithReservation", mock.Anything, mock.Anything, 4).Return(repository.ErrCapacityExceeded)

	svc := NewService(bookings, slots, services, approvedFacility(), nil)

	userID := int64(7)
	_, err := svc.Create(context.Background(), &userID, CreateBookingRequest{
		TimeSlotID:   20,
		ServiceID:    10,
		Participants: 3,
	})

	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestService_ChangeStatus_ConfirmByOwningAdmin(t *testing.T) {
	bookings := new(MockBookingRepository)
	facilities := new(MockFacilityRepository)

	userID := int64(7)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, FacilityID: 5, UserID: &userID, Status: domain.BookingPending,
	}, nil)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{ID: 5, AdminID: 2}, nil)
	bookings.On("UpdateStatus", mock.Anything, int64(1), domain.BookingConfirmed, "see you there").Return(nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), facilities, nil)

	b, err := svc.ChangeStatus(context.Background(), 1, 2, domain.RoleAdmin, UpdateStatusRequest{
		Status:     "confirmed",
		AdminNotes: "see you there",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	bookings.AssertExpectations(t)
}

func TestService_ChangeStatus_ForeignAdminForbidden(t *testing.T) {
	bookings := new(MockBookingRepository)
	facilities := new(MockFacilityRepository)

	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, FacilityID: 5, Status: domain.BookingPending,
	}, nil)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{ID: 5, AdminID: 2}, nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), facilities, nil)

	_, err := svc.ChangeStatus(context.Background(), 1, 3, domain.RoleAdmin, UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_ChangeStatus_CompletedIsTerminal(t *testing.T) {
	bookings := new(MockBookingRepository)
	facilities := new(MockFacilityRepository)

	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, FacilityID: 5, Status: domain.BookingCompleted,
	}, nil)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{ID: 5, AdminID: 2}, nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), facilities, nil)

	_, err := svc.ChangeStatus(context.Background(), 1, 2, domain.RoleAdmin, UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Cancel_ByOwnerRefundsPaidBooking(t *testing.T) {
	bookings := new(MockBookingRepository)
	ledger := new(MockPaymentLedger)

	userID := int64(7)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, FacilityID: 5, TimeSlotID: 20, UserID: &userID,
		Participants: 2, Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentCompleted,
	}, nil)
	bookings.On("CancelWithRelease", mock.Anything, mock.Anything, "plans changed").Return(nil)
	ledger.On("RefundForCancelledBooking", mock.Anything, int64(1), "plans changed").Return(true, nil)
	bookings.On("UpdatePaymentStatus", mock.Anything, int64(1), domain.PaymentRefunded).Return(nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), new(MockFacilityRepository), ledger)

	b, err := svc.Cancel(context.Background(), 1, 7, domain.RoleUser, CancelBookingRequest{Reason: "plans changed"})

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)
	assert.Equal(t, domain.PaymentRefunded, b.PaymentStatus)
	ledger.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestService_Cancel_UnpaidBookingSkipsLedger(t *testing.T) {
	bookings := new(MockBookingRepository)
	ledger := new(MockPaymentLedger)

	userID := int64(7)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, FacilityID: 5, TimeSlotID: 20, UserID: &userID,
		Participants: 1, Status: domain.BookingPending, PaymentStatus: domain.PaymentPending,
	}, nil)
	bookings.On("CancelWithRelease", mock.Anything, mock.Anything, "no show").Return(nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), new(MockFacilityRepository), ledger)

	_, err := svc.Cancel(context.Background(), 1, 7, domain.RoleUser, CancelBookingRequest{Reason: "no show"})

	assert.NoError(t, err)
	ledger.AssertNotCalled(t, "RefundForCancelledBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Cancel_SecondCancelIsConflict(t *testing.T) {
	bookings := new(MockBookingRepository)

	userID := int64(7)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, FacilityID: 5, UserID: &userID, Status: domain.BookingCancelled,
	}, nil)
	bookings.On("CancelWithRelease", mock.Anything, mock.Anything, "again").Return(repository.ErrAlreadyCancelled)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), new(MockFacilityRepository), nil)

	_, err := svc.Cancel(context.Background(), 1, 7, domain.RoleUser, CancelBookingRequest{Reason: "again"})

	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestService_Cancel_StrangerForbidden(t *testing.T) {
	bookings := new(MockBookingRepository)

	userID := int64(7)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, FacilityID: 5, UserID: &userID, Status: domain.BookingPending,
	}, nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), new(MockFacilityRepository), nil)

	_, err := svc.Cancel(context.Background(), 1, 8, domain.RoleUser, CancelBookingRequest{Reason: "not mine"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_ListForOperator_ScopedToOwnFacilities(t *testing.T) {
	bookings := new(MockBookingRepository)

	bookings.On("List", mock.Anything, mock.MatchedBy(func(f repository.BookingFilters) bool {
		return f.AdminID != nil && *f.AdminID == 2
	})).Return([]domain.Booking{}, int64(0), nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), new(MockFacilityRepository), nil)

	_, _, err := svc.ListForOperator(context.Background(), 2, domain.RoleAdmin, ListQuery{})

	assert.NoError(t, err)
	bookings.AssertExpectations(t)
}

func TestService_ListForOperator_SuperAdminUnscoped(t *testing.T) {
	bookings := new(MockBookingRepository)

	bookings.On("List", mock.Anything, mock.MatchedBy(func(f repository.BookingFilters) bool {
		return f.AdminID == nil
	})).Return([]domain.Booking{}, int64(0), nil)

	svc := NewService(bookings, new(MockTimeSlotRepository), new(MockServiceRepository), new(MockFacilityRepository), nil)

	_, _, err := svc.ListForOperator(context.Background(), 1, domain.RoleSuperAdmin, ListQuery{})

	assert.NoError(t, err)
	bookings.AssertExpectations(t)
}
