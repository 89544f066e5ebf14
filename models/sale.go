package models

import "time"

const (
	SaleStatusPending   = "PENDING"
	SaleStatusCompleted = "COMPLETED"
)

const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodCheck  = "CHECK"
	PaymentMethodCredit = "CREDIT"
)

// Sale is a completed or pending point-of-sale transaction.
// CustomerID == nil identifies a walk-in sale.
type Sale struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	SaleNumber    string     `json:"sale_number" gorm:"uniqueIndex;not null"`
	CustomerID    *uint      `json:"customer_id"`
	Customer      *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	SellerID      string     `json:"seller_id" gorm:"index"`
	Seller        *User      `json:"seller,omitempty" gorm:"foreignKey:SellerID;references:Id"`
	TotalAmount   float64    `json:"total_amount" gorm:"type:numeric(12,2)"`
	PaidAmount    float64    `json:"paid_amount" gorm:"type:numeric(12,2)"`
	CreditAmount  float64    `json:"credit_amount" gorm:"type:numeric(12,2)"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status" gorm:"type:VARCHAR(20)"`
	Notes         string     `json:"notes"`
	Items         []SaleItem `json:"items" gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type SaleItem struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	SaleID    uint     `json:"-" gorm:"index"`
	ProductID uint     `json:"product_id" gorm:"index"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unit_price" gorm:"type:numeric(12,2)"`
	Total     float64  `json:"total" gorm:"type:numeric(12,2)"`
}

// Outstanding is the unpaid balance of the sale.
func (s *Sale) Outstanding() float64 {
	out := s.TotalAmount - s.PaidAmount
	if out < 0 {
		return 0
	}
	return out
}
