package services

import (
	"fmt"

	"gescom-backend/models"

	"gorm.io/gorm"
)

// StockDelta is one signed stock adjustment plus its audit classification.
// Apply/Reverse are exact inverses: every committed sale's stock effect must
// be reversible by replaying its inverse, and create/edit/delete all go
// through this pair so the three paths cannot drift.
type StockDelta struct {
	ProductID uint
	Quantity  int // signed: IN positive, OUT negative
	Type      string
}

// ApplySaleEffects yields the stock deltas of committing the given items.
func ApplySaleEffects(items []models.SaleItem) []StockDelta {
	deltas := make([]StockDelta, 0, len(items))
	for _, it := range items {
		deltas = append(deltas, StockDelta{
			ProductID: it.ProductID,
			Quantity:  -it.Quantity,
			Type:      models.MovementOut,
		})
	}
	return deltas
}

// ReverseSaleEffects yields the inverse deltas (stock restoration).
func ReverseSaleEffects(items []models.SaleItem) []StockDelta {
	deltas := make([]StockDelta, 0, len(items))
	for _, it := range items {
		deltas = append(deltas, StockDelta{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Type:      models.MovementIn,
		})
	}
	return deltas
}

// execStockDeltas applies the deltas to product rows and appends one audit
// movement per delta. Runs inside the caller's transaction.
func execStockDeltas(tx *gorm.DB, deltas []StockDelta, reason, reference string) error {
	for _, d := range deltas {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", d.ProductID).
			Update("stock", gorm.Expr("stock + ?", d.Quantity)).Error; err != nil {
			return err
		}
		movement := models.StockMovement{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			Type:      d.Type,
			Reason:    reason,
			Reference: reference,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
	}
	return nil
}

// ensureStock re-fetches current stock for each item and fails on the first
// shortage. Called after any restoration so it sees restored quantities.
func ensureStock(tx *gorm.DB, items []models.SaleItem) error {
	for _, it := range items {
		var product models.Product
		if err := tx.First(&product, it.ProductID).Error; err != nil {
			return fmt.Errorf("produit %d introuvable: %w", it.ProductID, err)
		}
		if product.Stock < it.Quantity {
			return fmt.Errorf("%w: %s (disponible %d, demandé %d)",
				ErrInsufficientStock, product.Name, product.Stock, it.Quantity)
		}
	}
	return nil
}

// auditTrail writes a zero-quantity movement carrying the mandatory reason
// of a sale edit/delete. Pure audit narration, piggybacking on the
// stock-movement table.
func auditTrail(tx *gorm.DB, movementType, reason, reference string) error {
	row := models.StockMovement{
		Quantity:  0,
		Type:      movementType,
		Reason:    reason,
		Reference: reference,
	}
	return tx.Create(&row).Error
}
