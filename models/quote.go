package models

import "time"

type Quote struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	QuoteNumber  string      `json:"quote_number" gorm:"uniqueIndex;not null"`
	CustomerName string      `json:"customer_name"`
	Items        []QuoteItem `json:"items" gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Subtotal     float64     `json:"subtotal" gorm:"type:numeric(12,2)"`
	Discount     float64     `json:"discount" gorm:"type:numeric(12,2)"`
	Tax          float64     `json:"tax" gorm:"type:numeric(12,2)"`
	Total        float64     `json:"total" gorm:"type:numeric(12,2)"`
	ValidUntil   *time.Time  `json:"valid_until"`
	Notes        string      `json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type QuoteItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	QuoteID     uint    `json:"-" gorm:"index"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	Total       float64 `json:"total" gorm:"type:numeric(12,2)"`
}
