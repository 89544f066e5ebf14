package backup

import (
	"fmt"
	"time"

	"gescom-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stats mirrors the import response counters.
type Stats struct {
	ProductsImported  int `json:"products_imported"`
	CustomersImported int `json:"customers_imported"`
	SuppliersImported int `json:"suppliers_imported"`
	SalesImported     int `json:"sales_imported"`
	InvoicesImported  int `json:"invoices_imported"`
	QuotesImported    int `json:"quotes_imported"`
	Errors            int `json:"errors"`
}

type RestoreResult struct {
	Stats  Stats
	Errors []string
}

// Restore replays a validated document against the store inside one
// transaction. Replay is best-effort, not all-or-nothing: each row runs
// under its own savepoint, so a malformed row is rolled back and recorded
// without aborting the surrounding transaction or the remaining rows.
func Restore(db *gorm.DB, doc *Document) (*RestoreResult, error) {
	res := &RestoreResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		r := &replayer{tx: tx, res: res}

		// Users first: sales reference sellers. Credential material is never
		// in the snapshot, so existing passwords are left untouched and new
		// users arrive without a usable one.
		for _, rec := range doc.Company.Users {
			rec := rec
			r.try("user "+rec.ID, func() error {
				row := userFromRecord(rec)
				return tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role"}),
				}).Create(&row).Error
			})
		}

		if doc.Company.Settings != nil {
			rec := *doc.Company.Settings
			r.try("settings", func() error {
				row := settingsFromRecord(rec)
				return upsertByID(tx, &row)
			})
		}

		for _, rec := range doc.Data.Products {
			rec := rec
			if r.try(fmt.Sprintf("product %s", rec.SKU), func() error {
				row := productFromRecord(rec)
				return upsertByID(tx, &row)
			}) {
				res.Stats.ProductsImported++
			}
		}

		for _, rec := range doc.Data.Customers {
			rec := rec
			if r.try(fmt.Sprintf("customer %d", rec.ID), func() error {
				row := customerFromRecord(rec)
				return upsertByID(tx, &row)
			}) {
				res.Stats.CustomersImported++
			}
			for _, saleRec := range rec.Sales {
				saleRec := saleRec
				r.replaySale(saleRec)
			}
		}

		for _, rec := range doc.Data.StandaloneSales {
			rec := rec
			r.replaySale(rec)
		}

		for _, rec := range doc.Data.Suppliers {
			rec := rec
			if r.try(fmt.Sprintf("supplier %d", rec.ID), func() error {
				row := supplierFromRecord(rec)
				return upsertByID(tx, &row)
			}) {
				res.Stats.SuppliersImported++
			}
			// Nested transaction rows fail independently of their supplier.
			for _, txRec := range rec.Transactions {
				txRec := txRec
				r.try(fmt.Sprintf("supplier %d transaction %d", rec.ID, txRec.ID), func() error {
					row := supplierTransactionFromRecord(rec.ID, txRec)
					return upsertByID(tx, &row)
				})
			}
		}

		for _, rec := range doc.Data.Invoices {
			rec := rec
			if r.try(fmt.Sprintf("invoice %s", rec.InvoiceNumber), func() error {
				row := invoiceFromRecord(rec)
				if err := upsertByID(tx, &row); err != nil {
					return err
				}
				// Full replace of children, not a diff.
				if err := tx.Where("invoice_id = ?", rec.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
					return err
				}
				for _, it := range rec.Items {
					item := models.InvoiceItem{ID: it.ID, InvoiceID: rec.ID, Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total}
					if err := tx.Create(&item).Error; err != nil {
						return err
					}
				}
				return nil
			}) {
				res.Stats.InvoicesImported++
			}
		}

		for _, rec := range doc.Data.Quotes {
			rec := rec
			if r.try(fmt.Sprintf("quote %s", rec.QuoteNumber), func() error {
				row := quoteFromRecord(rec)
				if err := upsertByID(tx, &row); err != nil {
					return err
				}
				if err := tx.Where("quote_id = ?", rec.ID).Delete(&models.QuoteItem{}).Error; err != nil {
					return err
				}
				for _, it := range rec.Items {
					item := models.QuoteItem{ID: it.ID, QuoteID: rec.ID, Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total}
					if err := tx.Create(&item).Error; err != nil {
						return err
					}
				}
				return nil
			}) {
				res.Stats.QuotesImported++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

type replayer struct {
	tx    *gorm.DB
	res   *RestoreResult
	spSeq int
}

// try runs fn under a savepoint; on failure the savepoint is rolled back,
// the error is accumulated, and replay continues.
func (r *replayer) try(label string, fn func() error) bool {
	r.spSeq++
	sp := fmt.Sprintf("sp_restore_%d", r.spSeq)
	if err := r.tx.SavePoint(sp).Error; err != nil {
		r.fail(label, err)
		return false
	}
	if err := fn(); err != nil {
		_ = r.tx.RollbackTo(sp).Error
		r.fail(label, err)
		return false
	}
	return true
}

func (r *replayer) fail(label string, err error) {
	r.res.Errors = append(r.res.Errors, fmt.Sprintf("%s: %v", label, err))
	r.res.Stats.Errors++
}

func (r *replayer) replaySale(rec SaleRecord) {
	if r.try(fmt.Sprintf("sale %s", rec.SaleNumber), func() error {
		row := saleFromRecord(rec)
		if err := upsertByID(r.tx, &row); err != nil {
			return err
		}
		if err := r.tx.Where("sale_id = ?", rec.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		for _, it := range rec.Items {
			item := models.SaleItem{
				ID:        it.ID,
				SaleID:    rec.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Total:     it.Total,
			}
			if err := r.tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	}) {
		r.res.Stats.SalesImported++
	}
}

// upsertByID is create-or-update matched on the id embedded in the snapshot.
// Restoring into a fresh database creates rows under their original ids;
// restoring into the same database updates them in place.
func upsertByID[T any](tx *gorm.DB, row *T) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(row).Error
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func userFromRecord(r UserRecord) models.User {
	return models.User{
		Id:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      r.Role,
		Password:  []byte{},
		CreatedAt: parseDate(r.CreatedAt),
	}
}

func settingsFromRecord(r SettingsRecord) models.CompanySettings {
	return models.CompanySettings{
		ID:             r.ID,
		Name:           r.Name,
		Address:        r.Address,
		City:           r.City,
		Phone:          r.Phone,
		Email:          r.Email,
		Currency:       r.Currency,
		InvoicePrefix:  r.InvoicePrefix,
		QuotePrefix:    r.QuotePrefix,
		DefaultTaxRate: r.DefaultTaxRate,
	}
}

func productFromRecord(r ProductRecord) models.Product {
	return models.Product{
		ID:            r.ID,
		SKU:           r.SKU,
		Name:          r.Name,
		Description:   r.Description,
		PurchasePrice: r.PurchasePrice,
		Price:         r.Price,
		Stock:         r.Stock,
		MinStock:      r.MinStock,
		MaxStock:      r.MaxStock,
		Unit:          r.Unit,
		Category:      r.Category,
		Active:        r.Active,
		CreatedAt:     parseDate(r.CreatedAt),
	}
}

func customerFromRecord(r CustomerRecord) models.Customer {
	return models.Customer{
		ID:          r.ID,
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		Address:     r.Address,
		City:        r.City,
		CreditLimit: r.CreditLimit,
		CreditUsed:  r.CreditUsed,
		IsActive:    r.IsActive,
		CreatedAt:   parseDate(r.CreatedAt),
	}
}

func saleFromRecord(r SaleRecord) models.Sale {
	return models.Sale{
		ID:            r.ID,
		SaleNumber:    r.SaleNumber,
		CustomerID:    r.CustomerID,
		SellerID:      r.SellerID,
		TotalAmount:   r.TotalAmount,
		PaidAmount:    r.PaidAmount,
		CreditAmount:  r.CreditAmount,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
		Notes:         r.Notes,
		CreatedAt:     parseDate(r.CreatedAt),
	}
}

func supplierFromRecord(r SupplierRecord) models.Supplier {
	return models.Supplier{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
		TotalDebt: r.TotalDebt,
		TotalPaid: r.TotalPaid,
		Balance:   r.Balance,
		CreatedAt: parseDate(r.CreatedAt),
	}
}

func supplierTransactionFromRecord(supplierID uint, r SupplierTransactionRecord) models.SupplierTransaction {
	return models.SupplierTransaction{
		ID:          r.ID,
		SupplierID:  supplierID,
		Type:        r.Type,
		Amount:      r.Amount,
		Description: r.Description,
		CreatedAt:   parseDate(r.CreatedAt),
	}
}

func invoiceFromRecord(r InvoiceRecord) models.Invoice {
	return models.Invoice{
		ID:            r.ID,
		InvoiceNumber: r.InvoiceNumber,
		CustomerName:  r.CustomerName,
		SaleID:        r.SaleID,
		Subtotal:      r.Subtotal,
		Discount:      r.Discount,
		Tax:           r.Tax,
		Total:         r.Total,
		Notes:         r.Notes,
		CreatedAt:     parseDate(r.CreatedAt),
	}
}

func quoteFromRecord(r QuoteRecord) models.Quote {
	row := models.Quote{
		ID:           r.ID,
		QuoteNumber:  r.QuoteNumber,
		CustomerName: r.CustomerName,
		Subtotal:     r.Subtotal,
		Discount:     r.Discount,
		Tax:          r.Tax,
		Total:        r.Total,
		Notes:        r.Notes,
		CreatedAt:    parseDate(r.CreatedAt),
	}
	if r.ValidUntil != "" {
		t := parseDate(r.ValidUntil)
		row.ValidUntil = &t
	}
	return row
}
