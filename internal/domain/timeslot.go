package domain

import "time"

// Wall-clock formats used for slot times. StartTime/EndTime are opaque
// facility-local strings, never converted across time zones.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// TimeSlot is a discrete bookable window for one (facility, service)
// pair. Among active slots the (facility, service, date, start_time)
// key is unique; the constraint is enforced by a partial unique index
// in storage, application checks are only the first line of defence.
type TimeSlot struct {
	ID          int64     `json:"id"`
	FacilityID  int64     `json:"facility_id"`
	ServiceID   int64     `json:"service_id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsActive    bool      `json:"is_active"`
	BookedCount int       `json:"booked_count"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsBooked is derived, never stored: a slot is booked while any
// non-cancelled booking holds capacity on it.
func (t *TimeSlot) IsBooked() bool {
	return t.BookedCount > 0
}

// IsLocked reports whether mutation and deletion are forbidden.
func (t *TimeSlot) IsLocked() bool {
	return t.BookedCount > 0
}

// DayOf strips the time-of-day part, normalizing slot dates to day
// granularity in UTC.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
