package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the schema. Beyond AutoMigrate it installs the
// partial unique index that guarantees at most one active slot per
// (facility, service, date, start_time) key; the same statement is
// valid on PostgreSQL and SQLite, so tests exercise the identical
// constraint the deployment relies on.
func Migrate(db *gorm.DB) error {
	models := []any{
		&facilityModel{},
		&serviceModel{},
		&timeSlotModel{},
		&bookingModel{},
		&paymentModel{},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_slot_key
		 ON time_slots (facility_id, service_id, date, start_time)
		 WHERE is_active`,
	).Error; err != nil {
		return fmt.Errorf("create active-slot index: %w", err)
	}

	return nil
}
