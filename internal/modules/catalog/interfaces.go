package catalog

import (
	"context"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Update(ctx context.Context, s *domain.Service) error
	Delete(ctx context.Context, id int64) error
	HasOccupiedSlots(ctx context.Context, serviceID int64) (bool, error)
	List(ctx context.Context, f repository.ServiceFilters) ([]domain.Service, int64, error)
}

type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}
