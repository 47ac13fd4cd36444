package repository

import (
	"context"
	"time"

	"facilitybook/internal/domain"

	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type serviceModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	FacilityID      int64     `gorm:"column:facility_id;index"`
	Name            string    `gorm:"column:name"`
	Description     string    `gorm:"column:description;type:text"`
	Price           float64   `gorm:"column:price"`
	DurationMinutes int       `gorm:"column:duration_minutes"`
	Capacity        int       `gorm:"column:capacity"`
	IsActive        bool      `gorm:"column:is_active"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

func toDomainService(m serviceModel) *domain.Service {
	return &domain.Service{
		ID:              m.ID,
		FacilityID:      m.FacilityID,
		Name:            m.Name,
		Description:     m.Description,
		Price:           m.Price,
		DurationMinutes: m.DurationMinutes,
		Capacity:        m.Capacity,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toServiceModel(s *domain.Service) serviceModel {
	return serviceModel{
		ID:              s.ID,
		FacilityID:      s.FacilityID,
		Name:            s.Name,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		Capacity:        s.Capacity,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateUnique(tx.Error)
	}
	*s = *toDomainService(m)
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainService(m), nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	tx := r.db.WithContext(ctx).Model(&serviceModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":             m.Name,
		"description":      m.Description,
		"price":            m.Price,
		"duration_minutes": m.DurationMinutes,
		"capacity":         m.Capacity,
		"is_active":        m.IsActive,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the service and its slots, refusing inside the
// transaction if any slot picked up reserved capacity since the
// caller's check.
func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var occupied int64
		if err := tx.Model(&timeSlotModel{}).
			Where("service_id = ? AND booked_count > 0", id).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return ErrSlotOccupied
		}
		if err := tx.Where("service_id = ?", id).Delete(&timeSlotModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&serviceModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// HasOccupiedSlots reports whether any slot of the service currently
// holds reserved capacity. Such services may be deactivated but not
// deleted.
func (r *ServiceRepository) HasOccupiedSlots(ctx context.Context, serviceID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("service_id = ? AND booked_count > 0", serviceID).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

type ServiceFilters struct {
	FacilityID int64
	OnlyActive bool
	Limit      int
	Offset     int
}

func (r *ServiceRepository) List(ctx context.Context, f ServiceFilters) ([]domain.Service, int64, error) {
	q := r.db.WithContext(ctx).Model(&serviceModel{}).Where("facility_id = ?", f.FacilityID)
	if f.OnlyActive {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []serviceModel
	if err := q.Order("id ASC").Limit(f.Limit).Offset(f.Offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Service, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainService(m))
	}
	return out, total, nil
}
