package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gescom-backend/database"
	"gescom-backend/middlewares"
	"gescom-backend/models"
	"gescom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type documentItemDTO struct {
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type invoiceCreateDTO struct {
	CustomerName string            `json:"customer_name"`
	SaleID       *uint             `json:"sale_id"`
	Items        []documentItemDTO `json:"items" validate:"required,min=1,dive"`
	Discount     float64           `json:"discount" validate:"gte=0"`
	TaxRate      *float64          `json:"tax_rate"`
	Notes        string            `json:"notes"`
}

func CreateInvoice(c *fiber.Ctx) error {
	var dto invoiceCreateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	var created models.Invoice
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if dto.SaleID != nil {
			var sale models.Sale
			if err := tx.First(&sale, *dto.SaleID).Error; err != nil {
				return err
			}
		}

		items, subtotal := buildDocumentItems(dto.Items)
		taxRate := currentTaxRate(tx, dto.TaxRate)
		taxable := utils.Round2(subtotal - dto.Discount)
		tax := utils.Round2(taxable * taxRate / 100)

		number, err := nextDocumentNumber(tx, &models.Invoice{}, "invoice_number", settingsPrefix(tx, true))
		if err != nil {
			return err
		}

		created = models.Invoice{
			InvoiceNumber: number,
			CustomerName:  dto.CustomerName,
			SaleID:        dto.SaleID,
			Subtotal:      subtotal,
			Discount:      utils.Round2(dto.Discount),
			Tax:           tax,
			Total:         utils.Round2(taxable + tax),
			Notes:         dto.Notes,
		}
		for _, it := range items {
			created.Items = append(created.Items, models.InvoiceItem{
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Total:       it.Total,
			})
		}
		return tx.Create(&created).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Vente introuvable"})
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func GetInvoices(c *fiber.Ctx) error {
	var invoices []models.Invoice
	if err := database.DB.Order("created_at DESC").Preload("Items").Find(&invoices).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"invoices": invoices})
}

func GetInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	var invoice models.Invoice
	err = database.DB.Preload("Items").First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Facture introuvable"})
	}
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

func DeleteInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	res := database.DB.Select("Items").Delete(&models.Invoice{ID: uint(id)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Facture introuvable"})
	}
	return c.JSON(fiber.Map{"message": "Facture supprimée"})
}

type builtItem struct {
	Description string
	Quantity    int
	UnitPrice   float64
	Total       float64
}

func buildDocumentItems(dtos []documentItemDTO) ([]builtItem, float64) {
	items := make([]builtItem, 0, len(dtos))
	subtotal := 0.0
	for _, d := range dtos {
		total := utils.Round2(d.UnitPrice * float64(d.Quantity))
		items = append(items, builtItem{
			Description: strings.TrimSpace(d.Description),
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Total:       total,
		})
		subtotal = utils.Round2(subtotal + total)
	}
	return items, subtotal
}

func currentTaxRate(tx *gorm.DB, override *float64) float64 {
	if override != nil {
		return *override
	}
	var settings models.CompanySettings
	if err := tx.First(&settings).Error; err != nil {
		return models.DefaultSettings().DefaultTaxRate
	}
	return settings.DefaultTaxRate
}

func settingsPrefix(tx *gorm.DB, invoice bool) string {
	var settings models.CompanySettings
	if err := tx.First(&settings).Error; err != nil {
		settings = models.DefaultSettings()
	}
	if invoice {
		return settings.InvoicePrefix
	}
	return settings.QuotePrefix
}

// nextDocumentNumber continues the PREFIX-000001 sequence from the latest
// row of the given model, same scheme as sale numbers.
func nextDocumentNumber(tx *gorm.DB, model any, column, prefix string) (string, error) {
	var numbers []string
	err := tx.Model(model).Order("id DESC").Limit(1).Pluck(column, &numbers).Error
	if err != nil {
		return "", err
	}
	seq := 0
	if len(numbers) > 0 {
		if idx := strings.LastIndex(numbers[0], "-"); idx >= 0 {
			if n, convErr := strconv.Atoi(numbers[0][idx+1:]); convErr == nil {
				seq = n
			}
		}
	}
	return fmt.Sprintf("%s-%06d", prefix, seq+1), nil
}
