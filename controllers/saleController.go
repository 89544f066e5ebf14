package controllers

import (
	"errors"

	"gescom-backend/database"
	"gescom-backend/middlewares"
	"gescom-backend/models"
	"gescom-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type saleBody struct {
	services.SaleInput
	Reason string `json:"reason"`
}

func CreateSale(c *fiber.Ctx) error {
	var body saleBody
	if err := middlewares.BindAndValidate(c, &body); err != nil {
		return err
	}
	body.SellerID, _ = c.Locals("userID").(string)

	sale, err := services.CreateSale(database.DB, body.SaleInput)
	if err != nil {
		return saleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

func GetSales(c *fiber.Ctx) error {
	var sales []models.Sale
	q := database.DB.Order("created_at DESC").
		Preload("Items.Product").
		Preload("Customer").
		Preload("Seller")
	if customerID := c.Query("customer_id"); customerID != "" {
		q = q.Where("customer_id = ?", customerID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&sales).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sales": sales})
}

func GetSale(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	var sale models.Sale
	err = database.DB.
		Preload("Items.Product").
		Preload("Customer").
		Preload("Seller").
		First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Vente introuvable"})
	}
	if err != nil {
		return err
	}
	return c.JSON(sale)
}

func UpdateSale(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}

	var body saleBody
	if err := middlewares.BindAndValidate(c, &body); err != nil {
		return err
	}
	actorID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("role").(string)

	sale, err := services.EditSale(database.DB, uint(id), actorID, role, body.SaleInput, body.Reason)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(sale)
}

func DeleteSale(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	actorID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("role").(string)
	reason := c.Query("reason")

	if err := services.DeleteSale(database.DB, uint(id), actorID, role, reason); err != nil {
		return saleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Vente supprimée"})
}

// saleError maps service failures onto HTTP statuses: permission windows are
// 403, everything else user-correctable is 400.
func saleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Vente introuvable"})
	case errors.Is(err, services.ErrEditWindowClosed),
		errors.Is(err, services.ErrDeleteWindowClosed):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, services.ErrHasCreditPayments),
		errors.Is(err, services.ErrSaleReferenced),
		errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrEmptySale),
		errors.Is(err, services.ErrWalkInCredit),
		errors.Is(err, services.ErrCreditLimitExceeded),
		errors.Is(err, services.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return err
}
