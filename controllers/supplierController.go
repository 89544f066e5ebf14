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

type supplierCreateDTO struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

type supplierUpdateDTO struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type supplierTxDTO struct {
	Type        string  `json:"type" validate:"required,oneof=PURCHASE PAYMENT ADJUSTMENT"`
	Amount      float64 `json:"amount" validate:"required"`
	Description string  `json:"description"`
	Check       *struct {
		Number      string    `json:"number" validate:"required"`
		Issuer      string    `json:"issuer"`
		Beneficiary string    `json:"beneficiary"`
		DueDate     time.Time `json:"due_date"`
	} `json:"check"`
}

func CreateSupplier(c *fiber.Ctx) error {
	var dto supplierCreateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	supplier := models.Supplier{
		Name:    dto.Name,
		Phone:   dto.Phone,
		Email:   dto.Email,
		Address: dto.Address,
	}
	if err := database.DB.Create(&supplier).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Impossible de créer le fournisseur",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

func GetSuppliers(c *fiber.Ctx) error {
	var suppliers []models.Supplier
	if err := database.DB.Order("name").Find(&suppliers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"suppliers": suppliers})
}

func GetSupplier(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	var supplier models.Supplier
	err = database.DB.Preload("Transactions.Check").First(&supplier, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Fournisseur introuvable"})
	}
	if err != nil {
		return err
	}
	return c.JSON(supplier)
}

func UpdateSupplier(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}

	var dto supplierUpdateDTO
	if err := c.BodyParser(&dto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizePtrDTO(&dto)
	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Aucune modification fournie"})
	}

	res := database.DB.Model(&models.Supplier{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Fournisseur introuvable"})
	}

	var supplier models.Supplier
	if err := database.DB.First(&supplier, id).Error; err != nil {
		return err
	}
	return c.JSON(supplier)
}

// CreateSupplierTransaction records a purchase, payment or adjustment and
// maintains the supplier's running totals: PURCHASE raises total_debt,
// PAYMENT raises total_paid, ADJUSTMENT corrects total_debt by a signed
// amount. Balance is always total_debt - total_paid.
func CreateSupplierTransaction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}

	var dto supplierTxDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	var created models.SupplierTransaction
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var supplier models.Supplier
		if err := tx.First(&supplier, id).Error; err != nil {
			return err
		}

		created = models.SupplierTransaction{
			SupplierID:  supplier.ID,
			Type:        dto.Type,
			Amount:      utils.Round2(dto.Amount),
			Description: dto.Description,
		}

		if dto.Check != nil {
			check := models.Check{
				Number:      dto.Check.Number,
				Issuer:      dto.Check.Issuer,
				Beneficiary: dto.Check.Beneficiary,
				Amount:      created.Amount,
				DueDate:     dto.Check.DueDate,
			}
			if err := tx.Create(&check).Error; err != nil {
				return err
			}
			created.CheckID = &check.ID
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		switch dto.Type {
		case models.SupplierTxPurchase:
			supplier.TotalDebt = utils.Round2(supplier.TotalDebt + created.Amount)
		case models.SupplierTxPayment:
			supplier.TotalPaid = utils.Round2(supplier.TotalPaid + created.Amount)
		case models.SupplierTxAdjustment:
			supplier.TotalDebt = utils.Round2(supplier.TotalDebt + created.Amount)
		}
		supplier.Balance = utils.Round2(supplier.TotalDebt - supplier.TotalPaid)

		return tx.Model(&models.Supplier{}).Where("id = ?", supplier.ID).Updates(map[string]any{
			"total_debt": supplier.TotalDebt,
			"total_paid": supplier.TotalPaid,
			"balance":    supplier.Balance,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Fournisseur introuvable"})
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
