package facility

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	args := m.Called(ctx, f)
	if args.Error(0) == nil && f != nil {
		f.ID = 5
	}
	return args.Error(0)
}

func (m *MockFacilityRepository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Facility), args.Error(1)
}

func (m *MockFacilityRepository) Update(ctx context.Context, f *domain.Facility) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFacilityRepository) UpdateStatus(ctx context.Context, id int64, status domain.FacilityStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockFacilityRepository) DeleteCascade(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFacilityRepository) List(ctx context.Context, f repository.FacilityFilters) ([]domain.Facility, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Facility), args.Get(1).(int64), args.Error(2)
}

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, fh)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) Release(ctx context.Context, urls []string) error {
	args := m.Called(ctx, urls)
	return args.Error(0)
}

func TestService_Create_AlwaysStartsPending(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(facilities, new(MockMediaStore))

	f, err := svc.Create(context.Background(), 2, CreateFacilityRequest{Name: "Arena", City: "Almaty"})

	assert.NoError(t, err)
	assert.Equal(t, domain.FacilityPending, f.Status)
	assert.Equal(t, int64(2), f.AdminID)
}

func TestService_ChangeStatus_AdminCannotSelfApprove(t *testing.T) {
	facilities := new(MockFacilityRepository)
	svc := NewService(facilities, new(MockMediaStore))

	_, err := svc.ChangeStatus(context.Background(), 5, domain.RoleAdmin, domain.FacilityApproved)

	assert.ErrorIs(t, err, ErrForbidden)
	facilities.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ChangeStatus_SuperAdminApproves(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, AdminID: 2, Status: domain.FacilityPending,
	}, nil)
	facilities.On("UpdateStatus", mock.Anything, int64(5), domain.FacilityApproved).Return(nil)

	svc := NewService(facilities, new(MockMediaStore))

	f, err := svc.ChangeStatus(context.Background(), 5, domain.RoleSuperAdmin, domain.FacilityApproved)

	assert.NoError(t, err)
	assert.Equal(t, domain.FacilityApproved, f.Status)
}

func TestService_ChangeStatus_ReReviewApprovedToRejected(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, AdminID: 2, Status: domain.FacilityApproved,
	}, nil)
	facilities.On("UpdateStatus", mock.Anything, int64(5), domain.FacilityRejected).Return(nil)

	svc := NewService(facilities, new(MockMediaStore))

	f, err := svc.ChangeStatus(context.Background(), 5, domain.RoleSuperAdmin, domain.FacilityRejected)

	assert.NoError(t, err)
	assert.Equal(t, domain.FacilityRejected, f.Status)
}

func TestService_ChangeStatus_SameStatusRejected(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, Status: domain.FacilityApproved,
	}, nil)

	svc := NewService(facilities, new(MockMediaStore))

	_, err := svc.ChangeStatus(context.Background(), 5, domain.RoleSuperAdmin, domain.FacilityApproved)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Delete_AbortsWhenMediaReleaseFails(t *testing.T) {
	facilities := new(MockFacilityRepository)
	store := new(MockMediaStore)

	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, AdminID: 2, Gallery: []string{"/static/uploads/a.jpg"},
	}, nil)
	store.On("Release", mock.Anything, []string{"/static/uploads/a.jpg"}).Return(errors.New("store down"))

	svc := NewService(facilities, store)

	err := svc.Delete(context.Background(), 5, 2, domain.RoleAdmin)

	assert.ErrorIs(t, err, ErrMediaRelease)
	facilities.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
}

func TestService_Delete_ReleasesMediaThenCascades(t *testing.T) {
	facilities := new(MockFacilityRepository)
	store := new(MockMediaStore)

	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, AdminID: 2, Gallery: []string{"/static/uploads/a.jpg"},
	}, nil)
	store.On("Release", mock.Anything, []string{"/static/uploads/a.jpg"}).Return(nil)
	facilities.On("DeleteCascade", mock.Anything, int64(5)).Return(nil)

	svc := NewService(facilities, store)

	err := svc.Delete(context.Background(), 5, 2, domain.RoleAdmin)

	assert.NoError(t, err)
	facilities.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestService_GetByID_PendingHiddenFromPublic(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, AdminID: 2, Status: domain.FacilityPending,
	}, nil)

	svc := NewService(facilities, new(MockMediaStore))

	_, err := svc.GetByID(context.Background(), 5, 0, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(context.Background(), 5, 7, domain.RoleUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetByID_PendingVisibleToOwner(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("GetByID", mock.Anything, int64(5)).Return(&domain.Facility{
		ID: 5, AdminID: 2, Status: domain.FacilityPending,
	}, nil)

	svc := NewService(facilities, new(MockMediaStore))

	f, err := svc.GetByID(context.Background(), 5, 2, domain.RoleAdmin)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), f.ID)
}

func TestService_List_PublicSeesApprovedOnly(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("List", mock.Anything, mock.MatchedBy(func(f repository.FacilityFilters) bool {
		return f.Status != nil && *f.Status == domain.FacilityApproved && f.AdminID == nil
	})).Return([]domain.Facility{}, int64(0), nil)

	svc := NewService(facilities, new(MockMediaStore))

	_, _, err := svc.List(context.Background(), 0, "", ListQuery{})

	assert.NoError(t, err)
	facilities.AssertExpectations(t)
}

func TestService_List_AdminScopedToOwn(t *testing.T) {
	facilities := new(MockFacilityRepository)
	facilities.On("List", mock.Anything, mock.MatchedBy(func(f repository.FacilityFilters) bool {
		return f.AdminID != nil && *f.AdminID == 2 && f.Status == nil
	})).Return([]domain.Facility{}, int64(0), nil)

	svc := NewService(facilities, new(MockMediaStore))

	_, _, err := svc.List(context.Background(), 2, domain.RoleAdmin, ListQuery{})

	assert.NoError(t, err)
	facilities.AssertExpectations(t)
}
