package domain

import "time"

type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
)

// Payment is the one-to-one ledger record for a booking. Status mirrors
// the payment-provider callbacks; TransactionID is the idempotency key
// for duplicate callback delivery.
type Payment struct {
	ID            int64         `json:"id"`
	BookingID     int64         `json:"booking_id"`
	Amount        float64       `json:"amount"`
	Method        PaymentMethod `json:"method"`
	TransactionID string        `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`

	RefundDetails *RefundDetails `json:"refund_details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RefundDetails struct {
	Amount              float64   `json:"amount"`
	Reason              string    `json:"reason"`
	RefundedAt          time.Time `json:"refunded_at"`
	RefundTransactionID string    `json:"refund_transaction_id"`
}
