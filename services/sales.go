package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gescom-backend/models"
	"gescom-backend/utils"

	"gorm.io/gorm"
)

// Editability is computed per request, never stored: OWNER has no time
// limit; the original seller may edit within 24h and delete within 2h.
const (
	EditWindow   = 24 * time.Hour
	DeleteWindow = 2 * time.Hour
)

type SaleItemInput struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

type SaleInput struct {
	CustomerID    *uint           `json:"customer_id"`
	SellerID      string          `json:"-"`
	Items         []SaleItemInput `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string          `json:"payment_method"`
	AmountPaid    float64         `json:"amount_paid" validate:"gte=0"`
	Notes         string          `json:"notes"`
}

// CanEditSale reports whether the actor may still edit the sale.
func CanEditSale(sale *models.Sale, actorID, role string, now time.Time) bool {
	if role == models.RoleOwner {
		return true
	}
	return sale.SellerID == actorID && now.Sub(sale.CreatedAt) <= EditWindow
}

// CanDeleteSale reports whether the actor may still delete the sale.
func CanDeleteSale(sale *models.Sale, actorID, role string, now time.Time) bool {
	if role == models.RoleOwner {
		return true
	}
	return sale.SellerID == actorID && now.Sub(sale.CreatedAt) <= DeleteWindow
}

// CreateSale commits a new sale: stock check + decrement with OUT audit
// rows, credit-limit enforcement, sequential sale number.
func CreateSale(db *gorm.DB, in SaleInput) (*models.Sale, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptySale
	}

	var created models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		items, total, err := buildSaleItems(tx, in.Items)
		if err != nil {
			return err
		}
		if err := ensureStock(tx, items); err != nil {
			return err
		}

		paid := utils.Round2(in.AmountPaid)
		if paid > total {
			paid = total
		}
		credit := utils.Round2(total - paid)

		status := models.SaleStatusCompleted
		if credit > 0 {
			status = models.SaleStatusPending
		}

		if credit > 0 {
			if in.CustomerID == nil {
				return ErrWalkInCredit
			}
			if err := raiseCustomerCredit(tx, *in.CustomerID, credit); err != nil {
				return err
			}
		}

		number, err := nextSaleNumber(tx)
		if err != nil {
			return err
		}

		created = models.Sale{
			SaleNumber:    number,
			CustomerID:    in.CustomerID,
			SellerID:      in.SellerID,
			TotalAmount:   total,
			PaidAmount:    paid,
			CreditAmount:  credit,
			PaymentMethod: in.PaymentMethod,
			Status:        status,
			Notes:         in.Notes,
			Items:         items,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		return execStockDeltas(tx, ApplySaleEffects(created.Items), "Vente "+number, number)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// EditSale rewrites a sale under the permission/time window. Within one
// transaction: restore original stock, verify the new list against the
// restored stock, swap items, move credit between (possibly different)
// customers, and leave a zero-quantity CORRECTION audit row carrying the
// reason. Any failure rolls everything back, restoration included.
func EditSale(db *gorm.DB, saleID uint, actorID, role string, in SaleInput, reason string) (*models.Sale, error) {
	if len(strings.TrimSpace(reason)) < 5 {
		return nil, ErrReasonRequired
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptySale
	}

	var updated models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			return err
		}
		if !CanEditSale(&sale, actorID, role, time.Now()) {
			return ErrEditWindowClosed
		}
		if err := ensureNoCreditPayments(tx, sale.ID); err != nil {
			return err
		}

		// 1. Restore stock for every original line item.
		if err := execStockDeltas(tx, ReverseSaleEffects(sale.Items),
			"Modification vente "+sale.SaleNumber, sale.SaleNumber); err != nil {
			return err
		}

		// 2. The new list must fit the restored stock.
		newItems, total, err := buildSaleItems(tx, in.Items)
		if err != nil {
			return err
		}
		if err := ensureStock(tx, newItems); err != nil {
			return err
		}

		// 3. Drop old line items.
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}

		// 4. Give back the original customer's credit.
		if sale.CreditAmount > 0 && sale.CustomerID != nil {
			if err := lowerCustomerCredit(tx, *sale.CustomerID, sale.CreditAmount); err != nil {
				return err
			}
		}

		paid := utils.Round2(in.AmountPaid)
		if paid > total {
			paid = total
		}
		credit := utils.Round2(total - paid)
		status := models.SaleStatusCompleted
		if credit > 0 {
			status = models.SaleStatusPending
		}
		if credit > 0 && in.CustomerID == nil {
			return ErrWalkInCredit
		}

		// 5. Update the header and insert the new items.
		sale.CustomerID = in.CustomerID
		sale.TotalAmount = total
		sale.PaidAmount = paid
		sale.CreditAmount = credit
		sale.PaymentMethod = in.PaymentMethod
		sale.Status = status
		sale.Notes = in.Notes
		sale.Items = nil
		if err := tx.Save(&sale).Error; err != nil {
			return err
		}
		for i := range newItems {
			newItems[i].SaleID = sale.ID
			if err := tx.Create(&newItems[i]).Error; err != nil {
				return err
			}
		}

		// 6. Decrement stock for the new items.
		if err := execStockDeltas(tx, ApplySaleEffects(newItems),
			"Vente "+sale.SaleNumber+" (modifiée)", sale.SaleNumber); err != nil {
			return err
		}

		// 7. Charge the (possibly different) customer's credit.
		if credit > 0 {
			if err := raiseCustomerCredit(tx, *in.CustomerID, credit); err != nil {
				return err
			}
		}

		// 8. Audit row with the mandatory reason.
		if err := auditTrail(tx, models.MovementCorrection, reason, sale.SaleNumber); err != nil {
			return err
		}

		sale.Items = newItems
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSale removes a sale and compensates its side effects: stock
// restored with IN audit rows, customer credit given back, and a
// zero-quantity DELETION audit row carrying the reason.
func DeleteSale(db *gorm.DB, saleID uint, actorID, role, reason string) error {
	if len(strings.TrimSpace(reason)) < 5 {
		return ErrReasonRequired
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			return err
		}
		if !CanDeleteSale(&sale, actorID, role, time.Now()) {
			return ErrDeleteWindowClosed
		}
		if err := ensureNoCreditPayments(tx, sale.ID); err != nil {
			return err
		}
		var docs int64
		if err := tx.Model(&models.Invoice{}).Where("sale_id = ?", sale.ID).Count(&docs).Error; err != nil {
			return err
		}
		if docs > 0 {
			return ErrSaleReferenced
		}

		if err := execStockDeltas(tx, ReverseSaleEffects(sale.Items),
			"Suppression vente "+sale.SaleNumber, sale.SaleNumber); err != nil {
			return err
		}
		if sale.CreditAmount > 0 && sale.CustomerID != nil {
			if err := lowerCustomerCredit(tx, *sale.CustomerID, sale.CreditAmount); err != nil {
				return err
			}
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&sale).Error; err != nil {
			return err
		}
		return auditTrail(tx, models.MovementDeletion, reason, sale.SaleNumber)
	})
}

// buildSaleItems resolves the input lines against product rows; a zero unit
// price falls back to the product's current price.
func buildSaleItems(tx *gorm.DB, inputs []SaleItemInput) ([]models.SaleItem, float64, error) {
	items := make([]models.SaleItem, 0, len(inputs))
	total := 0.0
	for _, in := range inputs {
		var product models.Product
		if err := tx.First(&product, in.ProductID).Error; err != nil {
			return nil, 0, fmt.Errorf("produit %d introuvable: %w", in.ProductID, err)
		}
		price := in.UnitPrice
		if price == 0 {
			price = product.Price
		}
		lineTotal := utils.Round2(price * float64(in.Quantity))
		items = append(items, models.SaleItem{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: price,
			Total:     lineTotal,
		})
		total = utils.Round2(total + lineTotal)
	}
	return items, total, nil
}

func ensureNoCreditPayments(tx *gorm.DB, saleID uint) error {
	var count int64
	if err := tx.Model(&models.CreditPayment{}).Where("sale_id = ?", saleID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrHasCreditPayments
	}
	return nil
}

func raiseCustomerCredit(tx *gorm.DB, customerID uint, amount float64) error {
	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		return err
	}
	newUsed := utils.Round2(customer.CreditUsed + amount)
	if newUsed > customer.CreditLimit+0.005 {
		return ErrCreditLimitExceeded
	}
	return tx.Model(&models.Customer{}).Where("id = ?", customerID).
		Update("credit_used", newUsed).Error
}

func lowerCustomerCredit(tx *gorm.DB, customerID uint, amount float64) error {
	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		return err
	}
	newUsed := utils.Round2(customer.CreditUsed - amount)
	if newUsed < 0 {
		newUsed = 0
	}
	return tx.Model(&models.Customer{}).Where("id = ?", customerID).
		Update("credit_used", newUsed).Error
}

// nextSaleNumber continues the sequence from the most recent sale number,
// robust to deleted rows (a count would collide after a deletion).
func nextSaleNumber(tx *gorm.DB) (string, error) {
	var last models.Sale
	err := tx.Order("id DESC").First(&last).Error
	if err == gorm.ErrRecordNotFound {
		return "VNT-000001", nil
	}
	if err != nil {
		return "", err
	}
	seq := 0
	if idx := strings.LastIndex(last.SaleNumber, "-"); idx >= 0 {
		if n, convErr := strconv.Atoi(last.SaleNumber[idx+1:]); convErr == nil {
			seq = n
		}
	}
	return fmt.Sprintf("VNT-%06d", seq+1), nil
}
