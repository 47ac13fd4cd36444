package timeslot

import (
	"context"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"
)

type TimeSlotRepository interface {
	Create(ctx context.Context, t *domain.TimeSlot) error
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.TimeSlot, error)
	ExistsActive(ctx context.Context, facilityID, serviceID int64, date time.Time, startTime string) (bool, error)
	Update(ctx context.Context, t *domain.TimeSlot) error
	Delete(ctx context.Context, id int64) error
	DeleteBatch(ctx context.Context, ids []int64) (occupied []int64, err error)
	List(ctx context.Context, f repository.TimeSlotFilters) ([]domain.TimeSlot, int64, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}
