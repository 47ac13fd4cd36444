package booking

type CreateBookingRequest struct {
	TimeSlotID   int64 `json:"time_slot_id" binding:"required"`
	ServiceID    int64 `json:"service_id" binding:"required"`
	Participants int   `json:"participants" binding:"required,gte=1"`

	// Guest contact, used when the request carries no authenticated
	// user. Name plus at least one channel is required.
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
}

type UpdateStatusRequest struct {
	Status             string `json:"status" binding:"required,oneof=confirmed cancelled completed"`
	AdminNotes         string `json:"admin_notes"`
	CancellationReason string `json:"cancellation_reason"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}
