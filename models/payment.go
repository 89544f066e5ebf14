package models

import "time"

// CreditPayment is immutable once created; there is no update/delete path.
type CreditPayment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SaleID    uint      `json:"sale_id" gorm:"index"`
	Amount    float64   `json:"amount" gorm:"type:numeric(12,2)"`
	Method    string    `json:"method"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Check records the paper check backing a CHECK-method payment.
// One row per payment, independent of how many sales the amount was split across.
type Check struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SaleID      *uint     `json:"sale_id"`
	Number      string    `json:"number" gorm:"not null"`
	Issuer      string    `json:"issuer"`
	Beneficiary string    `json:"beneficiary"`
	Amount      float64   `json:"amount" gorm:"type:numeric(12,2)"`
	DueDate     time.Time `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
}
