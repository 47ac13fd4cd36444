package catalog

import (
	"context"
	"errors"

	"facilitybook/internal/domain"
	"facilitybook/internal/pkg/validator"
	"facilitybook/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	services   ServiceRepository
	facilities FacilityRepository
}

func NewService(services ServiceRepository, facilities FacilityRepository) *Service {
	return &Service{
		services:   services,
		facilities: facilities,
	}
}

// Create adds a bookable service to a facility the actor owns.
func (s *Service) Create(ctx context.Context, actorID int64, role domain.Role, req CreateServiceRequest) (*domain.Service, error) {
	f, err := s.loadFacility(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	if f.AdminID != actorID && role != domain.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	svc := &domain.Service{
		FacilityID:      req.FacilityID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		IsActive:        true,
	}
	if fields := validator.Validate(svc); fields != nil {
		return nil, ErrValidation
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Update edits a service; setting IsActive=false deactivates it, which
// stops future slot generation from offering it without touching
// existing bookings.
func (s *Service) Update(ctx context.Context, serviceID, actorID int64, role domain.Role, req UpdateServiceRequest) (*domain.Service, error) {
	svc, err := s.loadService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, svc.FacilityID, actorID, role); err != nil {
		return nil, err
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrValidation
		}
		svc.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, ErrValidation
		}
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, ErrValidation
		}
		svc.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.services.Update(ctx, svc); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

// Delete removes a service and its slots, but only while none of those
// slots hold reserved capacity. Occupied services can be deactivated
// instead.
func (s *Service) Delete(ctx context.Context, serviceID, actorID int64, role domain.Role) error {
	svc, err := s.loadService(ctx, serviceID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, svc.FacilityID, actorID, role); err != nil {
		return err
	}

	occupied, err := s.services.HasOccupiedSlots(ctx, serviceID)
	if err != nil {
		return err
	}
	if occupied {
		return ErrServiceLocked
	}

	if err := s.services.Delete(ctx, serviceID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotOccupied):
			return ErrServiceLocked
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrServiceNotFound
		}
		return err
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, serviceID int64) (*domain.Service, error) {
	return s.loadService(ctx, serviceID)
}

type ListQuery struct {
	FacilityID int64
	Page       int
	Limit      int
}

// ListByFacility returns the facility's services. Public viewers see
// active services of approved facilities only; the owner and
// super-admins see the full catalog.
func (s *Service) ListByFacility(ctx context.Context, actorID int64, role domain.Role, q ListQuery) ([]domain.Service, int64, error) {
	f, err := s.loadFacility(ctx, q.FacilityID)
	if err != nil {
		return nil, 0, err
	}

	owner := role == domain.RoleSuperAdmin || (role == domain.RoleAdmin && f.AdminID == actorID)
	if !owner && f.Status != domain.FacilityApproved {
		return nil, 0, ErrFacilityNotFound
	}

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	return s.services.List(ctx, repository.ServiceFilters{
		FacilityID: q.FacilityID,
		OnlyActive: !owner,
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
	})
}

func (s *Service) authorize(ctx context.Context, facilityID, actorID int64, role domain.Role) error {
	f, err := s.loadFacility(ctx, facilityID)
	if err != nil {
		return err
	}
	if f.AdminID != actorID && role != domain.RoleSuperAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *Service) loadFacility(ctx context.Context, id int64) (*domain.Facility, error) {
	f, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *Service) loadService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}
