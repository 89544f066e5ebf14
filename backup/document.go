package backup

import (
	"github.com/samber/lo"
)

// CurrentVersion is stamped into every export. MinSupportedVersion is the
// floor of the import compatibility gate; documents from a different major
// version are rejected.
const (
	CurrentVersion      = "1.2.0"
	MinSupportedVersion = "1.0.0"
)

// Fallback labels used when a denormalized relation is missing (soft-deleted
// product, removed customer...). A stale reference never drops the line item.
const (
	UnknownProduct  = "Produit inconnu"
	UnknownCustomer = "Client inconnu"
	UnknownSeller   = "Vendeur inconnu"
)

// Document is the transient, fully denormalized representation of the store.
// It is built fresh on every export and discarded after the response; on
// import it is the sole input.
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Company  CompanySection `json:"company"`
	Data     DataSection    `json:"data"`
}

type Metadata struct {
	Version      string `json:"version"`
	ExportedAt   string `json:"exported_at"`
	TotalRecords int    `json:"total_records"`
	Checksum     string `json:"checksum"`
	Compressed   bool   `json:"compressed"`
}

type CompanySection struct {
	Settings *SettingsRecord `json:"settings"`
	Users    []UserRecord    `json:"users"`
}

type DataSection struct {
	Products        []ProductRecord  `json:"products"`
	Customers       []CustomerRecord `json:"customers"`
	Suppliers       []SupplierRecord `json:"suppliers"`
	StandaloneSales []SaleRecord     `json:"standalone_sales"`
	Invoices        []InvoiceRecord  `json:"invoices"`
	Quotes          []QuoteRecord    `json:"quotes"`
}

type SettingsRecord struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	City           string  `json:"city"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Currency       string  `json:"currency"`
	InvoicePrefix  string  `json:"invoice_prefix"`
	QuotePrefix    string  `json:"quote_prefix"`
	DefaultTaxRate float64 `json:"default_tax_rate"`
}

// UserRecord never carries credential material; the password hash is
// excluded from the projection on purpose.
type UserRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type ProductRecord struct {
	ID            uint    `json:"id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	PurchasePrice float64 `json:"purchase_price"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"min_stock"`
	MaxStock      int     `json:"max_stock"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
}

type CustomerRecord struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	CreditLimit float64      `json:"credit_limit"`
	CreditUsed  float64      `json:"credit_used"`
	IsActive    bool         `json:"is_active"`
	Sales       []SaleRecord `json:"sales"`
	CreatedAt   string       `json:"created_at"`
}

type SaleRecord struct {
	ID            uint             `json:"id"`
	SaleNumber    string           `json:"sale_number"`
	CustomerID    *uint            `json:"customer_id"`
	CustomerName  string           `json:"customer_name"`
	SellerID      string           `json:"seller_id"`
	SellerName    string           `json:"seller_name"`
	TotalAmount   float64          `json:"total_amount"`
	PaidAmount    float64          `json:"paid_amount"`
	CreditAmount  float64          `json:"credit_amount"`
	PaymentMethod string           `json:"payment_method"`
	Status        string           `json:"status"`
	Notes         string           `json:"notes"`
	Items         []SaleItemRecord `json:"items"`
	CreatedAt     string           `json:"created_at"`
}

type SaleItemRecord struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductSKU  string  `json:"product_sku"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type SupplierRecord struct {
	ID           uint                        `json:"id"`
	Name         string                      `json:"name"`
	Phone        string                      `json:"phone"`
	Email        string                      `json:"email"`
	Address      string                      `json:"address"`
	TotalDebt    float64                     `json:"total_debt"`
	TotalPaid    float64                     `json:"total_paid"`
	Balance      float64                     `json:"balance"`
	Transactions []SupplierTransactionRecord `json:"transactions"`
	CreatedAt    string                      `json:"created_at"`
}

type SupplierTransactionRecord struct {
	ID          uint    `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CheckNumber string  `json:"check_number"`
	CreatedAt   string  `json:"created_at"`
}

type InvoiceRecord struct {
	ID            uint                 `json:"id"`
	InvoiceNumber string               `json:"invoice_number"`
	CustomerName  string               `json:"customer_name"`
	SaleID        *uint                `json:"sale_id"`
	Items         []DocumentItemRecord `json:"items"`
	Subtotal      float64              `json:"subtotal"`
	Discount      float64              `json:"discount"`
	Tax           float64              `json:"tax"`
	Total         float64              `json:"total"`
	Notes         string               `json:"notes"`
	CreatedAt     string               `json:"created_at"`
}

type QuoteRecord struct {
	ID           uint                 `json:"id"`
	QuoteNumber  string               `json:"quote_number"`
	CustomerName string               `json:"customer_name"`
	Items        []DocumentItemRecord `json:"items"`
	Subtotal     float64              `json:"subtotal"`
	Discount     float64              `json:"discount"`
	Tax          float64              `json:"tax"`
	Total        float64              `json:"total"`
	ValidUntil   string               `json:"valid_until,omitempty"`
	Notes        string               `json:"notes"`
	CreatedAt    string               `json:"created_at"`
}

type DocumentItemRecord struct {
	ID          uint    `json:"id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// CountRecords applies the counting convention of the export: every row of
// the data section counts individually, nested rows included (each sale,
// sale item, supplier transaction, invoice item and quote item adds one).
// The company block is not counted.
func (d *Document) CountRecords() int {
	n := len(d.Data.Products) +
		len(d.Data.Customers) +
		len(d.Data.Suppliers) +
		len(d.Data.StandaloneSales) +
		len(d.Data.Invoices) +
		len(d.Data.Quotes)

	n += lo.SumBy(d.Data.Customers, func(c CustomerRecord) int {
		return len(c.Sales) + lo.SumBy(c.Sales, func(s SaleRecord) int { return len(s.Items) })
	})
	n += lo.SumBy(d.Data.StandaloneSales, func(s SaleRecord) int { return len(s.Items) })
	n += lo.SumBy(d.Data.Suppliers, func(s SupplierRecord) int { return len(s.Transactions) })
	n += lo.SumBy(d.Data.Invoices, func(i InvoiceRecord) int { return len(i.Items) })
	n += lo.SumBy(d.Data.Quotes, func(q QuoteRecord) int { return len(q.Items) })

	return n
}
