package models

import "time"

// CompanySettings is a singleton row; the application expects at most one.
// A missing row means "use logical defaults" (see DefaultSettings).
type CompanySettings struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Currency       string    `json:"currency"`
	InvoicePrefix  string    `json:"invoice_prefix"`
	QuotePrefix    string    `json:"quote_prefix"`
	DefaultTaxRate float64   `json:"default_tax_rate"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultSettings is returned when no settings row exists yet.
func DefaultSettings() CompanySettings {
	return CompanySettings{
		Name:          "Mon Entreprise",
		Currency:      "DH",
		InvoicePrefix: "FAC",
		QuotePrefix:   "DEV",
	}
}
