package models

import "time"

// Customer credit invariant: 0 <= CreditUsed <= CreditLimit.
// Enforced by the services layer, not a database constraint.
type Customer struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	CreditLimit float64   `json:"credit_limit" gorm:"type:numeric(12,2)"`
	CreditUsed  float64   `json:"credit_used" gorm:"type:numeric(12,2)"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	Sales       []Sale    `json:"sales,omitempty" gorm:"foreignKey:CustomerID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
