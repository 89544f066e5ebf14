package backup

import (
	"time"

	"gescom-backend/models"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Export reads the entire store into a Backup Document. Read-only and
// idempotent: repeated calls produce equivalent documents modulo
// exported_at/checksum. The eight top-level reads run concurrently; this is
// the only concurrency construct in the subsystem.
func Export(db *gorm.DB) (*Document, error) {
	var (
		settings        *models.CompanySettings
		users           []models.User
		products        []models.Product
		customers       []models.Customer
		suppliers       []models.Supplier
		standaloneSales []models.Sale
		invoices        []models.Invoice
		quotes          []models.Quote
	)

	var g errgroup.Group
	g.Go(func() error {
		var row models.CompanySettings
		err := db.First(&row).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err == nil {
			settings = &row
		}
		return err
	})
	g.Go(func() error { return db.Order("created_at").Find(&users).Error })
	g.Go(func() error { return db.Order("id").Find(&products).Error })
	g.Go(func() error {
		return db.Order("id").
			Preload("Sales", func(tx *gorm.DB) *gorm.DB { return tx.Order("sales.created_at") }).
			Preload("Sales.Items.Product").
			Preload("Sales.Seller").
			Find(&customers).Error
	})
	g.Go(func() error {
		return db.Order("id").Preload("Transactions.Check").Find(&suppliers).Error
	})
	g.Go(func() error {
		return db.Where("customer_id IS NULL").Order("created_at").
			Preload("Items.Product").
			Preload("Seller").
			Find(&standaloneSales).Error
	})
	g.Go(func() error { return db.Order("id").Preload("Items").Find(&invoices).Error })
	g.Go(func() error { return db.Order("id").Preload("Items").Find(&quotes).Error })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc := &Document{
		Company: CompanySection{
			Settings: settingsToRecord(settings),
			Users:    lo.Map(users, func(u models.User, _ int) UserRecord { return userToRecord(u) }),
		},
		Data: DataSection{
			Products: lo.Map(products, func(p models.Product, _ int) ProductRecord { return productToRecord(p) }),
			Customers: lo.Map(customers, func(c models.Customer, _ int) CustomerRecord {
				return customerToRecord(c)
			}),
			Suppliers: lo.Map(suppliers, func(s models.Supplier, _ int) SupplierRecord { return supplierToRecord(s) }),
			StandaloneSales: lo.Map(standaloneSales, func(s models.Sale, _ int) SaleRecord {
				return saleToRecord(s, UnknownCustomer)
			}),
			Invoices: lo.Map(invoices, func(i models.Invoice, _ int) InvoiceRecord { return invoiceToRecord(i) }),
			Quotes:   lo.Map(quotes, func(q models.Quote, _ int) QuoteRecord { return quoteToRecord(q) }),
		},
	}

	doc.Metadata = Metadata{
		Version:      CurrentVersion,
		ExportedAt:   isoDate(time.Now()),
		TotalRecords: doc.CountRecords(),
	}

	checksum, err := ComputeChecksum(*doc)
	if err != nil {
		return nil, err
	}
	doc.Metadata.Checksum = checksum
	return doc, nil
}

func isoDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func settingsToRecord(s *models.CompanySettings) *SettingsRecord {
	if s == nil {
		return nil
	}
	return &SettingsRecord{
		ID:             s.ID,
		Name:           s.Name,
		Address:        s.Address,
		City:           s.City,
		Phone:          s.Phone,
		Email:          s.Email,
		Currency:       s.Currency,
		InvoicePrefix:  s.InvoicePrefix,
		QuotePrefix:    s.QuotePrefix,
		DefaultTaxRate: s.DefaultTaxRate,
	}
}

func userToRecord(u models.User) UserRecord {
	return UserRecord{
		ID:        u.Id,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: isoDate(u.CreatedAt),
	}
}

func productToRecord(p models.Product) ProductRecord {
	return ProductRecord{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		PurchasePrice: p.PurchasePrice,
		Price:         p.Price,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		MaxStock:      p.MaxStock,
		Unit:          p.Unit,
		Category:      p.Category,
		Active:        p.Active,
		CreatedAt:     isoDate(p.CreatedAt),
	}
}

func customerToRecord(c models.Customer) CustomerRecord {
	return CustomerRecord{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		City:        c.City,
		CreditLimit: c.CreditLimit,
		CreditUsed:  c.CreditUsed,
		IsActive:    c.IsActive,
		Sales: lo.Map(c.Sales, func(s models.Sale, _ int) SaleRecord {
			return saleToRecord(s, c.Name)
		}),
		CreatedAt: isoDate(c.CreatedAt),
	}
}

func saleToRecord(s models.Sale, customerName string) SaleRecord {
	sellerName := UnknownSeller
	if s.Seller != nil {
		sellerName = s.Seller.Name
	}
	return SaleRecord{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		CustomerID:    s.CustomerID,
		CustomerName:  customerName,
		SellerID:      s.SellerID,
		SellerName:    sellerName,
		TotalAmount:   s.TotalAmount,
		PaidAmount:    s.PaidAmount,
		CreditAmount:  s.CreditAmount,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		Notes:         s.Notes,
		Items: lo.Map(s.Items, func(it models.SaleItem, _ int) SaleItemRecord {
			return saleItemToRecord(it)
		}),
		CreatedAt: isoDate(s.CreatedAt),
	}
}

func saleItemToRecord(it models.SaleItem) SaleItemRecord {
	name, sku := UnknownProduct, ""
	if it.Product != nil {
		name, sku = it.Product.Name, it.Product.SKU
	}
	return SaleItemRecord{
		ID:          it.ID,
		ProductID:   it.ProductID,
		ProductName: name,
		ProductSKU:  sku,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Total:       it.Total,
	}
}

func supplierToRecord(s models.Supplier) SupplierRecord {
	return SupplierRecord{
		ID:        s.ID,
		Name:      s.Name,
		Phone:     s.Phone,
		Email:     s.Email,
		Address:   s.Address,
		TotalDebt: s.TotalDebt,
		TotalPaid: s.TotalPaid,
		Balance:   s.Balance,
		Transactions: lo.Map(s.Transactions, func(t models.SupplierTransaction, _ int) SupplierTransactionRecord {
			rec := SupplierTransactionRecord{
				ID:          t.ID,
				Type:        t.Type,
				Amount:      t.Amount,
				Description: t.Description,
				CreatedAt:   isoDate(t.CreatedAt),
			}
			if t.Check != nil {
				rec.CheckNumber = t.Check.Number
			}
			return rec
		}),
		CreatedAt: isoDate(s.CreatedAt),
	}
}

func invoiceToRecord(i models.Invoice) InvoiceRecord {
	return InvoiceRecord{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		CustomerName:  i.CustomerName,
		SaleID:        i.SaleID,
		Items: lo.Map(i.Items, func(it models.InvoiceItem, _ int) DocumentItemRecord {
			return DocumentItemRecord{ID: it.ID, Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total}
		}),
		Subtotal:  i.Subtotal,
		Discount:  i.Discount,
		Tax:       i.Tax,
		Total:     i.Total,
		Notes:     i.Notes,
		CreatedAt: isoDate(i.CreatedAt),
	}
}

func quoteToRecord(q models.Quote) QuoteRecord {
	rec := QuoteRecord{
		ID:           q.ID,
		QuoteNumber:  q.QuoteNumber,
		CustomerName: q.CustomerName,
		Items: lo.Map(q.Items, func(it models.QuoteItem, _ int) DocumentItemRecord {
			return DocumentItemRecord{ID: it.ID, Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total}
		}),
		Subtotal:  q.Subtotal,
		Discount:  q.Discount,
		Tax:       q.Tax,
		Total:     q.Total,
		Notes:     q.Notes,
		CreatedAt: isoDate(q.CreatedAt),
	}
	if q.ValidUntil != nil {
		rec.ValidUntil = isoDate(*q.ValidUntil)
	}
	return rec
}
