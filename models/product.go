package models

import "time"

type Product struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	SKU           string    `json:"sku" gorm:"uniqueIndex;not null"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description"`
	PurchasePrice float64   `json:"purchase_price" gorm:"type:numeric(12,2)"`
	Price         float64   `json:"price" gorm:"type:numeric(12,2)"`
	Stock         int       `json:"stock"`
	MinStock      int       `json:"min_stock"`
	MaxStock      int       `json:"max_stock"`
	Unit          string    `json:"unit"`
	Category      string    `json:"category"`
	Active        bool      `json:"active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
