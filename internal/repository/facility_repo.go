package repository

import (
	"context"
	"encoding/json"
	"time"

	"facilitybook/internal/domain"

	"gorm.io/gorm"
)

type FacilityRepository struct {
	db *gorm.DB
}

func NewFacilityRepository(db *gorm.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

type facilityModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	AdminID     int64     `gorm:"column:admin_id;index"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description;type:text"`
	Address     string    `gorm:"column:address"`
	City        string    `gorm:"column:city;index"`
	Phone       string    `gorm:"column:phone"`
	Gallery     string    `gorm:"column:gallery;type:text"` // JSON array of media URLs
	Status      string    `gorm:"column:status;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (facilityModel) TableName() string { return "facilities" }

func toDomainFacility(m facilityModel) *domain.Facility {
	var gallery []string
	if m.Gallery != "" {
		_ = json.Unmarshal([]byte(m.Gallery), &gallery)
	}

	return &domain.Facility{
		ID:          m.ID,
		AdminID:     m.AdminID,
		Name:        m.Name,
		Description: m.Description,
		Address:     m.Address,
		City:        m.City,
		Phone:       m.Phone,
		Gallery:     gallery,
		Status:      domain.FacilityStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toFacilityModel(f *domain.Facility) facilityModel {
	gallery := ""
	if len(f.Gallery) > 0 {
		if raw, err := json.Marshal(f.Gallery); err == nil {
			gallery = string(raw)
		}
	}

	return facilityModel{
		ID:          f.ID,
		AdminID:     f.AdminID,
		Name:        f.Name,
		Description: f.Description,
		Address:     f.Address,
		City:        f.City,
		Phone:       f.Phone,
		Gallery:     gallery,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (r *FacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	m := toFacilityModel(f)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateUnique(tx.Error)
	}
	*f = *toDomainFacility(m)
	return nil
}

func (r *FacilityRepository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	var m facilityModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainFacility(m), nil
}

func (r *FacilityRepository) Update(ctx context.Context, f *domain.Facility) error {
	m := toFacilityModel(f)
	tx := r.db.WithContext(ctx).Model(&facilityModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"address":     m.Address,
		"city":        m.City,
		"phone":       m.Phone,
		"gallery":     m.Gallery,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FacilityRepository) UpdateStatus(ctx context.Context, id int64, status domain.FacilityStatus) error {
	tx := r.db.WithContext(ctx).Model(&facilityModel{}).Where("id = ?", id).
		Update("status", string(status))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade removes the facility together with its owned services
// and their time slots in one transaction. Media release happens before
// this is called; if it failed, the record must stay.
func (r *FacilityRepository) DeleteCascade(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("facility_id = ?", id).Delete(&timeSlotModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("facility_id = ?", id).Delete(&serviceModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&facilityModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FacilityFilters narrows List. A nil Status means no status filter
// (super-admin view).
type FacilityFilters struct {
	Status  *domain.FacilityStatus
	AdminID *int64
	City    string
	Limit   int
	Offset  int
}

func (r *FacilityRepository) List(ctx context.Context, f FacilityFilters) ([]domain.Facility, int64, error) {
	q := r.db.WithContext(ctx).Model(&facilityModel{})

	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.AdminID != nil {
		q = q.Where("admin_id = ?", *f.AdminID)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []facilityModel
	if err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Facility, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainFacility(m))
	}
	return out, total, nil
}
