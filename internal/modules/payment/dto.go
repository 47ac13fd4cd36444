package payment

type CreatePaymentRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Method    string `json:"method" binding:"required,oneof=card cash transfer"`
}

// CallbackRequest is the provider notification. Delivery may repeat;
// transaction_id deduplicates.
type CallbackRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=success failed"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required"`
}
