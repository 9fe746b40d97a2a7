package models

import "time"

// Payment method constants used across checkout-related models.
const (
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// PaymentRecord stores one external payment transaction. PaymentID is the
// processor-side identifier and carries a unique index: no matter how many
// times ingestion is attempted (browser callback, webhook, client retry),
// at most one row exists per external payment.
type PaymentRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PaymentID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CourseID  uint      `gorm:"not null;index" json:"course_id"`
	Amount    int64     `gorm:"not null" json:"amount"` // minor units (cents)
	Currency  string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Method    string    `gorm:"type:varchar(20);not null" json:"method"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the PaymentRecord model
func (PaymentRecord) TableName() string {
	return "payments"
}

// IsCompleted reports whether the payment reached its terminal success state.
func (p *PaymentRecord) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// KnownPaymentMethod reports whether method is one of the supported methods.
func KnownPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodWallet:
		return true
	default:
		return false
	}
}
