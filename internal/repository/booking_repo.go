package repository

import (
	"context"
	"time"

	"facilitybook/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID         int64  `gorm:"column:id;primaryKey"`
	FacilityID int64  `gorm:"column:facility_id;index"`
	ServiceID  int64  `gorm:"column:service_id;index"`
	TimeSlotID int64  `gorm:"column:time_slot_id;index"`
	UserID     *int64 `gorm:"column:user_id;index"`

	GuestName  string `gorm:"column:guest_name"`
	GuestEmail string `gorm:"column:guest_email"`
	GuestPhone string `gorm:"column:guest_phone"`

	Participants  int     `gorm:"column:participants"`
	TotalAmount   float64 `gorm:"column:total_amount"`
	Status        string  `gorm:"column:status;index"`
	PaymentStatus string  `gorm:"column:payment_status"`

	AdminNotes         string     `gorm:"column:admin_notes;type:text"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                 m.ID,
		FacilityID:         m.FacilityID,
		ServiceID:          m.ServiceID,
		TimeSlotID:         m.TimeSlotID,
		UserID:             m.UserID,
		GuestName:          m.GuestName,
		GuestEmail:         m.GuestEmail,
		GuestPhone:         m.GuestPhone,
		Participants:       m.Participants,
		TotalAmount:        m.TotalAmount,
		Status:             domain.BookingStatus(m.Status),
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		AdminNotes:         m.AdminNotes,
		CancellationReason: m.CancellationReason,
		CancelledAt:        m.CancelledAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                 b.ID,
		FacilityID:         b.FacilityID,
		ServiceID:          b.ServiceID,
		TimeSlotID:         b.TimeSlotID,
		UserID:             b.UserID,
		GuestName:          b.GuestName,
		GuestEmail:         b.GuestEmail,
		GuestPhone:         b.GuestPhone,
		Participants:       b.Participants,
		TotalAmount:        b.TotalAmount,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		AdminNotes:         b.AdminNotes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// CreateWithReservation inserts the booking and takes its participant
// capacity on the slot as one atomic unit. The guarded increment and
// the insert run in a single transaction; when the increment matches
// no row the capacity is exhausted and nothing is written.
func (r *BookingRepository) CreateWithReservation(ctx context.Context, b *domain.Booking, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := reserveCapacity(tx, b.TimeSlotID, b.Participants, capacity)
		if err != nil {
			return err
		}
		if !ok {
			// Zero rows can also mean the slot vanished or was
			// deactivated under us; report that as what it is.
			var cur timeSlotModel
			if err := tx.First(&cur, b.TimeSlotID).Error; err != nil {
				return err
			}
			if !cur.IsActive {
				return ErrSlotInactive
			}
			return ErrCapacityExceeded
		}

		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return translateUnique(err)
		}
		*b = *toDomainBooking(m)
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// UpdateStatus writes a non-cancelling status change (confirm,
// complete) together with optional admin notes.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, adminNotes string) error {
	updates := map[string]any{"status": string(status)}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).
		Update("payment_status", string(status))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CancelWithRelease marks the booking cancelled and releases its
// reserved capacity atomically. The status write is guarded on the
// current status still being cancellable, making a raced double cancel
// a no-op detectable by the caller. A missing slot does not fail the
// cancellation.
func (r *BookingRepository) CancelWithRelease(ctx context.Context, b *domain.Booking, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status IN ?", b.ID,
				[]string{string(domain.BookingPending), string(domain.BookingConfirmed)}).
			Updates(map[string]any{
				"status":              string(domain.BookingCancelled),
				"cancellation_reason": reason,
				"cancelled_at":        now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var cur bookingModel
			if err := tx.First(&cur, b.ID).Error; err != nil {
				return err
			}
			if cur.Status == string(domain.BookingCancelled) {
				return ErrAlreadyCancelled
			}
			return ErrNotCancellable
		}

		if err := releaseCapacity(tx, b.TimeSlotID, b.Participants); err != nil {
			return err
		}

		b.Status = domain.BookingCancelled
		b.CancellationReason = reason
		b.CancelledAt = &now
		return nil
	})
}

// SumActiveParticipants returns the participant total across
// non-cancelled bookings of one slot. Used to audit the
// bookedCount/bookings invariant.
func (r *BookingRepository) SumActiveParticipants(ctx context.Context, slotID int64) (int, error) {
	var sum *int
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("time_slot_id = ? AND status <> ?", slotID, string(domain.BookingCancelled)).
		Select("SUM(participants)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

type BookingFilters struct {
	AdminID    *int64 // scope to facilities owned by this admin
	UserID     *int64
	FacilityID *int64
	Status     *domain.BookingStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// List returns bookings newest-first with a deterministic tiebreaker so
// page boundaries stay stable under concurrent inserts.
func (r *BookingRepository) List(ctx context.Context, f BookingFilters) ([]domain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&bookingModel{})

	if f.AdminID != nil {
		q = q.Where("facility_id IN (?)",
			r.db.Model(&facilityModel{}).Select("id").Where("admin_id = ?", *f.AdminID))
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.FacilityID != nil {
		q = q.Where("facility_id = ?", *f.FacilityID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.DateFrom != nil {
		q = q.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("created_at < ?", *f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []bookingModel
	if err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, total, nil
}
