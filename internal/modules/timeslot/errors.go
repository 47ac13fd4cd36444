package timeslot

import "errors"

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrServiceInactive  = errors.New("service is deactivated")
	ErrSlotNotFound     = errors.New("time slot not found")
	ErrConflict         = errors.New("active slot already exists for this time")
	ErrSlotLocked       = errors.New("slot has reserved capacity")
	ErrForbidden        = errors.New("not allowed for this facility")
	ErrValidation       = errors.New("validation error")
)
