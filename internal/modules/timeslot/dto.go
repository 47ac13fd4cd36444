package timeslot

type CreateSlotRequest struct {
	FacilityID int64  `json:"facility_id" binding:"required"`
	ServiceID  int64  `json:"service_id" binding:"required"`
	Date       string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime  string `json:"start_time" binding:"required"` // HH:MM
	EndTime    string `json:"end_time" binding:"required"`   // HH:MM
}

type SlotWindow struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// BulkCreateRequest generates slots for base_date plus each day offset.
// An empty day_offsets list means just the base date.
type BulkCreateRequest struct {
	FacilityID int64        `json:"facility_id" binding:"required"`
	ServiceID  int64        `json:"service_id" binding:"required"`
	BaseDate   string       `json:"base_date" binding:"required"`
	Slots      []SlotWindow `json:"slots" binding:"required,min=1,dive"`
	DayOffsets []int        `json:"day_offsets"`
}

// SkippedSlot records one non-fatal per-item failure of a bulk run.
type SkippedSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Reason    string `json:"reason"`
}

type UpdateSlotRequest struct {
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsActive  *bool   `json:"is_active"`
}

type BulkDeleteRequest struct {
	SlotIDs []int64 `json:"slot_ids" binding:"required,min=1"`
}
