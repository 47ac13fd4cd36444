package booking

import "errors"

var (
	ErrSlotNotFound        = errors.New("time slot not found or inactive")
	ErrFacilityNotFound    = errors.New("facility not found or not approved")
	ErrServiceNotFound     = errors.New("service not found or inactive")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrCapacityExceeded    = errors.New("participants exceed remaining slot capacity")
	ErrForbidden           = errors.New("not allowed for this booking")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAlreadyCancelled    = errors.New("booking already cancelled")
	ErrValidation          = errors.New("validation error")
	ErrGuestContactMissing = errors.New("guest bookings require contact details")
)
