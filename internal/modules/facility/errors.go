package facility

import "errors"

var (
	ErrNotFound          = errors.New("facility not found")
	ErrForbidden         = errors.New("not allowed for this facility")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMediaRelease      = errors.New("media store rejected release")
	ErrValidation        = errors.New("validation error")
)
