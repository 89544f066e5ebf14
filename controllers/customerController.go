package controllers

import (
	"errors"

	"gescom-backend/database"
	"gescom-backend/middlewares"
	"gescom-backend/models"
	"gescom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type customerCreateDTO struct {
	Name        string  `json:"name" validate:"required"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	CreditLimit float64 `json:"credit_limit" validate:"gte=0"`
}

type customerUpdateDTO struct {
	Name        *string  `json:"name"`
	Phone       *string  `json:"phone"`
	Email       *string  `json:"email"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	CreditLimit *float64 `json:"credit_limit"`
	IsActive    *bool    `json:"is_active"`
}

func CreateCustomer(c *fiber.Ctx) error {
	var dto customerCreateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	customer := models.Customer{
		Name:        dto.Name,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Address:     dto.Address,
		City:        dto.City,
		CreditLimit: dto.CreditLimit,
		IsActive:    true,
	}
	if err := database.DB.Create(&customer).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Impossible de créer le client",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func GetCustomers(c *fiber.Ctx) error {
	var customers []models.Customer
	q := database.DB.Order("name")
	if c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&customers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"customers": customers})
}

func GetCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	var customer models.Customer
	err = database.DB.Preload("Sales.Items").First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Client introuvable"})
	}
	if err != nil {
		return err
	}
	return c.JSON(customer)
}

func UpdateCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}

	var dto customerUpdateDTO
	if err := c.BodyParser(&dto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizePtrDTO(&dto)
	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Aucune modification fournie"})
	}

	// CreditUsed is owned by the sale/payment workflows; a direct lowering of
	// the limit below current usage is rejected.
	if limit, ok := updates["credit_limit"].(float64); ok {
		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Client introuvable"})
		}
		if limit < customer.CreditUsed {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "La limite de crédit ne peut pas être inférieure au crédit en cours",
			})
		}
	}

	res := database.DB.Model(&models.Customer{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Client introuvable"})
	}

	var customer models.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		return err
	}
	return c.JSON(customer)
}
