package domain

import "time"

type FacilityStatus string

const (
	FacilityPending  FacilityStatus = "pending"
	FacilityApproved FacilityStatus = "approved"
	FacilityRejected FacilityStatus = "rejected"
)

type Facility struct {
	ID          int64          `json:"id"`
	AdminID     int64          `json:"admin_id"`
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description,omitempty"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	Phone       string         `json:"phone,omitempty"`
	Gallery     []string       `json:"gallery,omitempty"`
	Status      FacilityStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Services []Service `json:"services,omitempty"`
}

// CanTransitionTo reports whether a super-admin may move the facility
// into the requested status. Pending can go either way; approved and
// rejected may be re-reviewed into each other.
func (f *Facility) CanTransitionTo(next FacilityStatus) bool {
	if next != FacilityApproved && next != FacilityRejected {
		return false
	}
	return f.Status != next
}
