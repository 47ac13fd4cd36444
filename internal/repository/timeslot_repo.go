package repository

import (
	"context"
	"time"

	"facilitybook/internal/domain"

	"gorm.io/gorm"
)

type TimeSlotRepository struct {
	db *gorm.DB
}

func NewTimeSlotRepository(db *gorm.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

type timeSlotModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	FacilityID  int64     `gorm:"column:facility_id;index"`
	ServiceID   int64     `gorm:"column:service_id;index"`
	Date        time.Time `gorm:"column:date;index"`
	StartTime   string    `gorm:"column:start_time"`
	EndTime     string    `gorm:"column:end_time"`
	IsActive    bool      `gorm:"column:is_active"`
	BookedCount int       `gorm:"column:booked_count"`
	CreatedBy   int64     `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (timeSlotModel) TableName() string { return "time_slots" }

func toDomainTimeSlot(m timeSlotModel) *domain.TimeSlot {
	return &domain.TimeSlot{
		ID:          m.ID,
		FacilityID:  m.FacilityID,
		ServiceID:   m.ServiceID,
		Date:        domain.DayOf(m.Date),
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		IsActive:    m.IsActive,
		BookedCount: m.BookedCount,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toTimeSlotModel(t *domain.TimeSlot) timeSlotModel {
	return timeSlotModel{
		ID:          t.ID,
		FacilityID:  t.FacilityID,
		ServiceID:   t.ServiceID,
		Date:        domain.DayOf(t.Date),
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		IsActive:    t.IsActive,
		BookedCount: t.BookedCount,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Create inserts one slot. The partial unique index on active
// (facility, service, date, start_time) keys is the backstop against
// raced duplicate creation; violations come back as ErrDuplicateKey.
func (r *TimeSlotRepository) Create(ctx context.Context, t *domain.TimeSlot) error {
	m := toTimeSlotModel(t)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateUnique(tx.Error)
	}
	*t = *toDomainTimeSlot(m)
	return nil
}

func (r *TimeSlotRepository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	var m timeSlotModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainTimeSlot(m), nil
}

func (r *TimeSlotRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.TimeSlot, error) {
	var models []timeSlotModel
	tx := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.TimeSlot, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainTimeSlot(m))
	}
	return out, nil
}

// ExistsActive reports whether an active slot already occupies the
// (facility, service, date, startTime) key.
func (r *TimeSlotRepository) ExistsActive(ctx context.Context, facilityID, serviceID int64, date time.Time, startTime string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("facility_id = ? AND service_id = ? AND date = ? AND start_time = ? AND is_active = ?",
			facilityID, serviceID, domain.DayOf(date), startTime, true).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// Update mutates one slot. The statement is guarded on the slot still
// holding no reserved capacity, so a reservation landing between the
// caller's check and this write cannot be clobbered; zero rows come
// back as ErrSlotOccupied or ErrRecordNotFound.
func (r *TimeSlotRepository) Update(ctx context.Context, t *domain.TimeSlot) error {
	m := toTimeSlotModel(t)
	tx := r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("id = ? AND booked_count = 0", m.ID).Updates(map[string]any{
		"date":       m.Date,
		"start_time": m.StartTime,
		"end_time":   m.EndTime,
		"is_active":  m.IsActive,
	})
	if tx.Error != nil {
		return translateUnique(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return r.explainMiss(ctx, m.ID)
	}
	return nil
}

// Delete removes one slot, guarded like Update.
func (r *TimeSlotRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND booked_count = 0", id).Delete(&timeSlotModel{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return r.explainMiss(ctx, id)
	}
	return nil
}

func (r *TimeSlotRepository) explainMiss(ctx context.Context, id int64) error {
	var cur timeSlotModel
	if err := r.db.WithContext(ctx).First(&cur, id).Error; err != nil {
		return err
	}
	return ErrSlotOccupied
}

// DeleteBatch removes the given slots in one transaction, refusing the
// whole batch if any target still holds reserved capacity. The IDs of
// the occupied slots are returned so the caller can report them.
func (r *TimeSlotRepository) DeleteBatch(ctx context.Context, ids []int64) (occupied []int64, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []timeSlotModel
		if err := tx.Where("id IN ? AND booked_count > 0", ids).Find(&locked).Error; err != nil {
			return err
		}
		if len(locked) > 0 {
			for _, m := range locked {
				occupied = append(occupied, m.ID)
			}
			return ErrSlotOccupied
		}
		// The guard repeats inside the DELETE so a reservation racing
		// past the check above cannot lose its slot.
		return tx.Where("id IN ? AND booked_count = 0", ids).Delete(&timeSlotModel{}).Error
	})
	return occupied, err
}

type TimeSlotFilters struct {
	FacilityID *int64
	ServiceID  *int64
	Date       *time.Time
	IsActive   *bool
	IsBooked   *bool

	// ApprovedOnly limits results to slots of approved facilities;
	// OwnerAdminID additionally admits that admin's own facilities
	// regardless of status.
	ApprovedOnly bool
	OwnerAdminID *int64

	Limit  int
	Offset int
}

func (r *TimeSlotRepository) List(ctx context.Context, f TimeSlotFilters) ([]domain.TimeSlot, int64, error) {
	q := r.db.WithContext(ctx).Model(&timeSlotModel{})

	if f.ApprovedOnly {
		visible := r.db.Model(&facilityModel{}).Select("id").
			Where("status = ?", string(domain.FacilityApproved))
		if f.OwnerAdminID != nil {
			visible = visible.Or("admin_id = ?", *f.OwnerAdminID)
		}
		q = q.Where("facility_id IN (?)", visible)
	}
	if f.FacilityID != nil {
		q = q.Where("facility_id = ?", *f.FacilityID)
	}
	if f.ServiceID != nil {
		q = q.Where("service_id = ?", *f.ServiceID)
	}
	if f.Date != nil {
		q = q.Where("date = ?", domain.DayOf(*f.Date))
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.IsBooked != nil {
		if *f.IsBooked {
			q = q.Where("booked_count > 0")
		} else {
			q = q.Where("booked_count = 0")
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []timeSlotModel
	if err := q.Order("date ASC, start_time ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.TimeSlot, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainTimeSlot(m))
	}
	return out, total, nil
}

// reserveCapacity increments booked_count by n only while the result
// stays within capacity. Check and increment are a single guarded
// UPDATE, so concurrent reservations can never overshoot; zero rows
// affected means the capacity was exhausted.
func reserveCapacity(tx *gorm.DB, slotID int64, n, capacity int) (bool, error) {
	res := tx.Model(&timeSlotModel{}).
		Where("id = ? AND is_active = ? AND booked_count + ? <= ?", slotID, true, n, capacity).
		UpdateColumn("booked_count", gorm.Expr("booked_count + ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// releaseCapacity decrements booked_count by n, flooring at zero. A
// missing slot is not an error: cancellation must succeed even when
// the slot record is gone.
func releaseCapacity(tx *gorm.DB, slotID int64, n int) error {
	return tx.Model(&timeSlotModel{}).
		Where("id = ?", slotID).
		UpdateColumn("booked_count", gorm.Expr(
			"CASE WHEN booked_count > ? THEN booked_count - ? ELSE 0 END", n, n)).Error
}
