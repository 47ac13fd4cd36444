package repository

import (
	"context"
	"time"

	"facilitybook/internal/domain"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentModel struct {
	ID            int64   `gorm:"column:id;primaryKey"`
	BookingID     int64   `gorm:"column:booking_id;uniqueIndex"`
	Amount        float64 `gorm:"column:amount"`
	Method        string  `gorm:"column:method"`
	TransactionID string  `gorm:"column:transaction_id;uniqueIndex"`
	Status        string  `gorm:"column:status;index"`

	RefundAmount        *float64   `gorm:"column:refund_amount"`
	RefundReason        *string    `gorm:"column:refund_reason;type:text"`
	RefundedAt          *time.Time `gorm:"column:refunded_at"`
	RefundTransactionID *string    `gorm:"column:refund_transaction_id"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string { return "payments" }

func toDomainPayment(m paymentModel) *domain.Payment {
	p := &domain.Payment{
		ID:            m.ID,
		BookingID:     m.BookingID,
		Amount:        m.Amount,
		Method:        domain.PaymentMethod(m.Method),
		TransactionID: m.TransactionID,
		Status:        domain.PaymentStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	if m.RefundedAt != nil {
		rd := &domain.RefundDetails{RefundedAt: *m.RefundedAt}
		if m.RefundAmount != nil {
			rd.Amount = *m.RefundAmount
		}
		if m.RefundReason != nil {
			rd.Reason = *m.RefundReason
		}
		if m.RefundTransactionID != nil {
			rd.RefundTransactionID = *m.RefundTransactionID
		}
		p.RefundDetails = rd
	}

	return p
}

func toPaymentModel(p *domain.Payment) paymentModel {
	m := paymentModel{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		Method:        string(p.Method),
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	if p.RefundDetails != nil {
		m.RefundAmount = &p.RefundDetails.Amount
		m.RefundReason = &p.RefundDetails.Reason
		m.RefundedAt = &p.RefundDetails.RefundedAt
		m.RefundTransactionID = &p.RefundDetails.RefundTransactionID
	}

	return m
}

// Create inserts the one-per-booking ledger record. The unique indexes
// on booking_id and transaction_id are the storage backstop against
// duplicate ledgers and duplicate charges.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	m := toPaymentModel(p)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateUnique(tx.Error)
	}
	*p = *toDomainPayment(m)
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var m paymentModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPayment(m), nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var m paymentModel
	tx := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPayment(m), nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	var m paymentModel
	tx := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPayment(m), nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	tx := r.db.WithContext(ctx).Model(&paymentModel{}).Where("id = ?", id).
		Update("status", string(status))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyRefund writes the refund detail and flips the payment to
// refunded in one update.
func (r *PaymentRepository) ApplyRefund(ctx context.Context, id int64, rd domain.RefundDetails) error {
	tx := r.db.WithContext(ctx).Model(&paymentModel{}).Where("id = ?", id).Updates(map[string]any{
		"status":                string(domain.PaymentRefunded),
		"refund_amount":         rd.Amount,
		"refund_reason":         rd.Reason,
		"refunded_at":           rd.RefundedAt,
		"refund_transaction_id": rd.RefundTransactionID,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
