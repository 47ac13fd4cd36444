package payment

import "errors"

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPaymentExists    = errors.New("booking already has a payment")
	ErrBookingCancelled = errors.New("cannot pay for a cancelled booking")
	ErrNotRefundable    = errors.New("payment is not in a refundable state")
	ErrForbidden        = errors.New("not allowed for this payment")
	ErrValidation       = errors.New("validation error")
)
