package models

import "time"

const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementCorrection = "CORRECTION"
	MovementDeletion   = "DELETION"
)

// StockMovement is append-only: the canonical audit trail for every
// stock-affecting operation. Zero-quantity CORRECTION/DELETION rows carry
// the mandatory reason of a sale edit/delete.
type StockMovement struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"index"`
	Quantity  int       `json:"quantity"` // signed by type: IN positive, OUT negative
	Type      string    `json:"type" gorm:"type:VARCHAR(20);index"`
	Reason    string    `json:"reason"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
