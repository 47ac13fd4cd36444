package facility

import (
	"context"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"
)

type FacilityRepository interface {
	Create(ctx context.Context, f *domain.Facility) error
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
	Update(ctx context.Context, f *domain.Facility) error
	UpdateStatus(ctx context.Context, id int64, status domain.FacilityStatus) error
	DeleteCascade(ctx context.Context, id int64) error
	List(ctx context.Context, f repository.FacilityFilters) ([]domain.Facility, int64, error)
}
