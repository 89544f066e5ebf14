package models

import "time"

const (
	SupplierTxPurchase   = "PURCHASE"
	SupplierTxPayment    = "PAYMENT"
	SupplierTxAdjustment = "ADJUSTMENT"
)

// Supplier balance invariant: Balance = TotalDebt - TotalPaid,
// maintained by the application on every transaction row.
type Supplier struct {
	ID           uint                  `json:"id" gorm:"primaryKey"`
	Name         string                `json:"name" gorm:"not null"`
	Phone        string                `json:"phone"`
	Email        string                `json:"email"`
	Address      string                `json:"address"`
	TotalDebt    float64               `json:"total_debt" gorm:"type:numeric(12,2)"`
	TotalPaid    float64               `json:"total_paid" gorm:"type:numeric(12,2)"`
	Balance      float64               `json:"balance" gorm:"type:numeric(12,2)"`
	Transactions []SupplierTransaction `json:"transactions,omitempty" gorm:"foreignKey:SupplierID"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type SupplierTransaction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SupplierID  uint      `json:"-" gorm:"index"`
	Type        string    `json:"type" gorm:"type:VARCHAR(20)"`
	Amount      float64   `json:"amount" gorm:"type:numeric(12,2)"`
	Description string    `json:"description"`
	CheckID     *uint     `json:"check_id"`
	Check       *Check    `json:"check,omitempty" gorm:"foreignKey:CheckID"`
	CreatedAt   time.Time `json:"created_at"`
}
