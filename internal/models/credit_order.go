package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderTypePayment = "payment"
	OrderTypeManual  = "manual"
)

// CreditOrder is a pending credit purchase. Completing an order credits
// the buyer's ledger in the same transaction that marks it paid.
type CreditOrder struct {
	ID          string     `gorm:"primarykey;type:varchar(36)" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Credits     int64      `gorm:"not null" json:"credits"`
	AmountUSD   float64    `gorm:"type:decimal(20,8);not null" json:"amount_usd"`
	Status      string     `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	OrderType   string     `gorm:"type:varchar(20);not null;default:'payment'" json:"order_type"`
	Remark      string     `gorm:"type:text" json:"remark,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy uint       `json:"completed_by,omitempty"`
}

// TableName overrides the table name
func (CreditOrder) TableName() string {
	return "credit_orders"
}
