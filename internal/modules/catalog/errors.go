package catalog

import "errors"

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrForbidden        = errors.New("not allowed for this service")
	ErrServiceLocked    = errors.New("service has occupied slots")
	ErrValidation       = errors.New("validation error")
)
