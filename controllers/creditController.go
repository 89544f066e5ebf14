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

type creditPaymentBody struct {
	CustomerID uint                `json:"customer_id" validate:"required"`
	Amount     float64             `json:"amount" validate:"required"`
	Method     string              `json:"method" validate:"required,oneof=CASH CARD CHECK"`
	Note       string              `json:"note"`
	Mode       string              `json:"mode" validate:"omitempty,oneof=auto manual"`
	SaleIDs    []uint              `json:"sale_ids"`
	Check      *services.CheckData `json:"check"`
}

func CreateCreditPayment(c *fiber.Ctx) error {
	var body creditPaymentBody
	if err := middlewares.BindAndValidate(c, &body); err != nil {
		return err
	}
	if body.Check != nil {
		if err := middlewares.ValidateStruct(body.Check); err != nil {
			return err
		}
	}

	payments, err := services.ApplyCreditPayment(database.DB, services.PaymentInput{
		CustomerID: body.CustomerID,
		Amount:     body.Amount,
		Method:     body.Method,
		Note:       body.Note,
		Mode:       body.Mode,
		SaleIDs:    body.SaleIDs,
		Check:      body.Check,
	})
	if err != nil {
		return creditError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Paiement enregistré",
		"payments": payments,
	})
}

func GetCreditPayments(c *fiber.Ctx) error {
	var payments []models.CreditPayment
	q := database.DB.Order("created_at DESC")
	if saleID := c.Query("sale_id"); saleID != "" {
		q = q.Where("sale_id = ?", saleID)
	}
	if err := q.Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payments": payments})
}

func creditError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Client introuvable"})
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrOverpayment),
		errors.Is(err, services.ErrCheckDataRequired),
		errors.Is(err, services.ErrNoSalesSelected):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return err
}
