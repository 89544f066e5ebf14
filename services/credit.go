package services

import (
	"math"
	"strings"
	"time"

	"gescom-backend/models"
	"gescom-backend/utils"

	"gorm.io/gorm"
)

const (
	PaymentModeAuto   = "auto"
	PaymentModeManual = "manual"
)

type CheckData struct {
	Number      string    `json:"number" validate:"required"`
	Issuer      string    `json:"issuer" validate:"required"`
	Beneficiary string    `json:"beneficiary" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

type PaymentInput struct {
	CustomerID uint
	Amount     float64
	Method     string
	Note       string
	Mode       string // auto => FIFO over oldest open sales; manual => explicit sale set
	SaleIDs    []uint
	Check      *CheckData
}

// ApplyCreditPayment settles part of a customer's outstanding credit against
// open sales. Unlike import replay this path is all-or-nothing: any row
// failure aborts the whole payment.
func ApplyCreditPayment(db *gorm.DB, in PaymentInput) ([]models.CreditPayment, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Method == models.PaymentMethodCheck {
		if in.Check == nil || strings.TrimSpace(in.Check.Number) == "" ||
			strings.TrimSpace(in.Check.Issuer) == "" ||
			strings.TrimSpace(in.Check.Beneficiary) == "" ||
			in.Check.DueDate.IsZero() {
			return nil, ErrCheckDataRequired
		}
	}
	mode := in.Mode
	if mode == "" {
		mode = PaymentModeAuto
	}
	if mode == PaymentModeManual && len(in.SaleIDs) == 0 {
		return nil, ErrNoSalesSelected
	}

	var payments []models.CreditPayment
	err := db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			return err
		}
		// Preconditions before any mutation.
		if in.Amount > customer.CreditUsed+0.005 {
			return ErrOverpayment
		}

		sales, err := openSales(tx, &customer, mode, in.SaleIDs)
		if err != nil {
			return err
		}

		remaining := in.Amount
		applied := 0.0
		for i := range sales {
			if remaining <= 0 {
				break
			}
			sale := &sales[i]
			outstanding := sale.Outstanding()
			if outstanding <= 0 {
				continue
			}
			portion := utils.Round2(math.Min(outstanding, remaining))

			sale.PaidAmount = utils.Round2(sale.PaidAmount + portion)
			sale.CreditAmount = sale.Outstanding()
			if sale.CreditAmount <= 0 {
				sale.Status = models.SaleStatusCompleted
			}
			if err := tx.Model(&models.Sale{}).Where("id = ?", sale.ID).Updates(map[string]any{
				"paid_amount":   sale.PaidAmount,
				"credit_amount": sale.CreditAmount,
				"status":        sale.Status,
			}).Error; err != nil {
				return err
			}

			payment := models.CreditPayment{
				SaleID: sale.ID,
				Amount: portion,
				Method: in.Method,
				Note:   in.Note,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			payments = append(payments, payment)

			remaining = utils.Round2(remaining - portion)
			applied = utils.Round2(applied + portion)
		}

		// Decrement the customer's running credit by what was actually
		// applied, clamped at zero.
		newUsed := utils.Round2(customer.CreditUsed - applied)
		if newUsed < 0 {
			newUsed = 0
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("credit_used", newUsed).Error; err != nil {
			return err
		}

		// One check record per payment, regardless of how many sales the
		// amount was split across.
		if in.Method == models.PaymentMethodCheck && len(payments) > 0 {
			saleID := payments[0].SaleID
			check := models.Check{
				SaleID:      &saleID,
				Number:      in.Check.Number,
				Issuer:      in.Check.Issuer,
				Beneficiary: in.Check.Beneficiary,
				Amount:      applied,
				DueDate:     in.Check.DueDate,
			}
			if err := tx.Create(&check).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// openSales returns the sales the payment may settle. Auto mode: every open
// sale of the customer, oldest first (FIFO). Manual mode: the caller's
// explicit set, in the order given; the server stays the source of truth
// for the actual allocation.
func openSales(tx *gorm.DB, customer *models.Customer, mode string, saleIDs []uint) ([]models.Sale, error) {
	if mode == PaymentModeManual {
		var fetched []models.Sale
		if err := tx.Where("customer_id = ? AND id IN ?", customer.ID, saleIDs).Find(&fetched).Error; err != nil {
			return nil, err
		}
		byID := make(map[uint]models.Sale, len(fetched))
		for _, s := range fetched {
			byID[s.ID] = s
		}
		ordered := make([]models.Sale, 0, len(saleIDs))
		for _, id := range saleIDs {
			if s, ok := byID[id]; ok {
				ordered = append(ordered, s)
			}
		}
		return ordered, nil
	}

	var sales []models.Sale
	err := tx.Where("customer_id = ? AND paid_amount < total_amount", customer.ID).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}
