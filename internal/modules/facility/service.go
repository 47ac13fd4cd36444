package facility

import (
	"context"
	"errors"
	"mime/multipart"

	"facilitybook/internal/domain"
	"facilitybook/internal/media"
	"facilitybook/internal/pkg/validator"
	"facilitybook/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	facilities FacilityRepository
	mediaStore media.Store
}

func NewService(facilities FacilityRepository, mediaStore media.Store) *Service {
	return &Service{
		facilities: facilities,
		mediaStore: mediaStore,
	}
}

// Create registers a new facility for the given admin. Status is
// always pending regardless of input; only a super-admin transition
// can change it.
func (s *Service) Create(ctx context.Context, adminID int64, req CreateFacilityRequest) (*domain.Facility, error) {
	f := &domain.Facility{
		AdminID:     adminID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Phone:       req.Phone,
		Status:      domain.FacilityPending,
	}
	if fields := validator.Validate(f); fields != nil {
		return nil, ErrValidation
	}

	if err := s.facilities.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Update edits descriptive fields. The owning admin may do this in any
// status; status itself is not touchable here.
func (s *Service) Update(ctx context.Context, facilityID, actorID int64, role domain.Role, req UpdateFacilityRequest) (*domain.Facility, error) {
	f, err := s.load(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if f.AdminID != actorID && role != domain.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.Address != nil {
		f.Address = *req.Address
	}
	if req.City != nil {
		f.City = *req.City
	}
	if req.Phone != nil {
		f.Phone = *req.Phone
	}

	if err := s.facilities.Update(ctx, f); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// ChangeStatus performs the approval transition. Callers below
// super-admin are rejected here as well as at the route guard, so an
// owning admin can never self-approve through any path.
func (s *Service) ChangeStatus(ctx context.Context, facilityID int64, role domain.Role, next domain.FacilityStatus) (*domain.Facility, error) {
	if role != domain.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	f, err := s.load(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !f.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.facilities.UpdateStatus(ctx, facilityID, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	f.Status = next
	return f, nil
}

// Delete removes the facility after releasing its gallery from the
// media store. A failed release aborts before anything is deleted so
// the record and its media never diverge.
func (s *Service) Delete(ctx context.Context, facilityID, actorID int64, role domain.Role) error {
	f, err := s.load(ctx, facilityID)
	if err != nil {
		return err
	}
	if f.AdminID != actorID && role != domain.RoleSuperAdmin {
		return ErrForbidden
	}

	if len(f.Gallery) > 0 {
		if err := s.mediaStore.Release(ctx, f.Gallery); err != nil {
			return ErrMediaRelease
		}
	}

	if err := s.facilities.DeleteCascade(ctx, facilityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// AddGalleryImage uploads one image through the media store and
// appends its URL to the gallery.
func (s *Service) AddGalleryImage(ctx context.Context, facilityID, actorID int64, role domain.Role, fh *multipart.FileHeader) (*domain.Facility, error) {
	f, err := s.load(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if f.AdminID != actorID && role != domain.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	url, err := s.mediaStore.Save(ctx, fh)
	if err != nil {
		return nil, err
	}

	f.Gallery = append(f.Gallery, url)
	if err := s.facilities.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// GetByID applies the visibility rules: anonymous callers and plain
// users only see approved facilities, the owner and super-admins see
// everything.
func (s *Service) GetByID(ctx context.Context, facilityID int64, actorID int64, role domain.Role) (*domain.Facility, error) {
	f, err := s.load(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	if f.Status != domain.FacilityApproved {
		if role != domain.RoleSuperAdmin && !(role == domain.RoleAdmin && f.AdminID == actorID) {
			return nil, ErrNotFound
		}
	}
	return f, nil
}

type ListQuery struct {
	City   string
	Status string
	Page   int
	Limit  int
}

// List scopes results by the viewer: public listings show approved
// facilities only, an admin sees every facility they own, a
// super-admin sees everything and may filter by status.
func (s *Service) List(ctx context.Context, actorID int64, role domain.Role, q ListQuery) ([]domain.Facility, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	filters := repository.FacilityFilters{
		City:   q.City,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}

	switch role {
	case domain.RoleSuperAdmin:
		if q.Status != "" {
			st := domain.FacilityStatus(q.Status)
			filters.Status = &st
		}
	case domain.RoleAdmin:
		filters.AdminID = &actorID
		if q.Status != "" {
			st := domain.FacilityStatus(q.Status)
			filters.Status = &st
		}
	default:
		approved := domain.FacilityApproved
		filters.Status = &approved
	}

	return s.facilities.List(ctx, filters)
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Facility, error) {
	f, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}
