package domain

import "time"

// Service is a bookable offering within a facility. Capacity is the
// maximum number of simultaneous participants per time slot.
type Service struct {
	ID              int64     `json:"id"`
	FacilityID      int64     `json:"facility_id"`
	Name            string    `json:"name" validate:"required"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price" validate:"gte=0"`
	DurationMinutes int       `json:"duration_minutes" validate:"gt=0"`
	Capacity        int       `json:"capacity" validate:"gt=0"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
