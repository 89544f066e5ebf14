package controllers

import (
	"errors"
	"time"

	"gescom-backend/database"
	"gescom-backend/middlewares"
	"gescom-backend/models"
	"gescom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type quoteCreateDTO struct {
	CustomerName string            `json:"customer_name"`
	Items        []documentItemDTO `json:"items" validate:"required,min=1,dive"`
	Discount     float64           `json:"discount" validate:"gte=0"`
	TaxRate      *float64          `json:"tax_rate"`
	ValidUntil   *time.Time        `json:"valid_until"`
	Notes        string            `json:"notes"`
}

func CreateQuote(c *fiber.Ctx) error {
	var dto quoteCreateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	var created models.Quote
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		items, subtotal := buildDocumentItems(dto.Items)
		taxRate := currentTaxRate(tx, dto.TaxRate)
		taxable := utils.Round2(subtotal - dto.Discount)
		tax := utils.Round2(taxable * taxRate / 100)

		number, err := nextDocumentNumber(tx, &models.Quote{}, "quote_number", settingsPrefix(tx, false))
		if err != nil {
			return err
		}

		created = models.Quote{
			QuoteNumber:  number,
			CustomerName: dto.CustomerName,
			Subtotal:     subtotal,
			Discount:     utils.Round2(dto.Discount),
			Tax:          tax,
			Total:        utils.Round2(taxable + tax),
			ValidUntil:   dto.ValidUntil,
			Notes:        dto.Notes,
		}
		for _, it := range items {
			created.Items = append(created.Items, models.QuoteItem{
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Total:       it.Total,
			})
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func GetQuotes(c *fiber.Ctx) error {
	var quotes []models.Quote
	if err := database.DB.Order("created_at DESC").Preload("Items").Find(&quotes).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"quotes": quotes})
}

func GetQuote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	var quote models.Quote
	err = database.DB.Preload("Items").First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Devis introuvable"})
	}
	if err != nil {
		return err
	}
	return c.JSON(quote)
}

func DeleteQuote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	res := database.DB.Select("Items").Delete(&models.Quote{ID: uint(id)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Devis introuvable"})
	}
	return c.JSON(fiber.Map{"message": "Devis supprimé"})
}
