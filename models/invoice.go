package models

import "time"

// Invoice is a manually authored commercial document, independent of sales.
// SaleID is only set for invoices generated from a sale; it blocks deletion
// of that sale while the document exists.
type Invoice struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	InvoiceNumber string        `json:"invoice_number" gorm:"uniqueIndex;not null"`
	CustomerName  string        `json:"customer_name"`
	SaleID        *uint         `json:"sale_id"`
	Items         []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Subtotal      float64       `json:"subtotal" gorm:"type:numeric(12,2)"`
	Discount      float64       `json:"discount" gorm:"type:numeric(12,2)"`
	Tax           float64       `json:"tax" gorm:"type:numeric(12,2)"`
	Total         float64       `json:"total" gorm:"type:numeric(12,2)"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type InvoiceItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	InvoiceID   uint    `json:"-" gorm:"index"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	Total       float64 `json:"total" gorm:"type:numeric(12,2)"`
}
