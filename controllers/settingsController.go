package controllers

import (
	"errors"

	"gescom-backend/database"
	"gescom-backend/models"
	"gescom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type settingsUpdateDTO struct {
	Name           *string  `json:"name"`
	Address        *string  `json:"address"`
	City           *string  `json:"city"`
	Phone          *string  `json:"phone"`
	Email          *string  `json:"email"`
	Currency       *string  `json:"currency"`
	InvoicePrefix  *string  `json:"invoice_prefix"`
	QuotePrefix    *string  `json:"quote_prefix"`
	DefaultTaxRate *float64 `json:"default_tax_rate"`
}

func GetSettings(c *fiber.Ctx) error {
	var settings models.CompanySettings
	err := database.DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(models.DefaultSettings())
	}
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

// UpdateSettings upserts the singleton row; the first update creates it
// from defaults.
func UpdateSettings(c *fiber.Ctx) error {
	var dto settingsUpdateDTO
	if err := c.BodyParser(&dto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizePtrDTO(&dto)
	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Aucune modification fournie"})
	}

	var settings models.CompanySettings
	err := database.DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultSettings()
		if err := database.DB.Create(&settings).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if err := database.DB.Model(&settings).Updates(updates).Error; err != nil {
		return err
	}
	if err := database.DB.First(&settings, settings.ID).Error; err != nil {
		return err
	}
	return c.JSON(settings)
}
