package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"gescom-backend/cache"
	"gescom-backend/database"
	"gescom-backend/middlewares"
	"gescom-backend/models"
	"gescom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const productListKey = "products:list"

// ProductCache is injected at startup; the list endpoint serves through it
// and every mutation invalidates it.
var ProductCache cache.Store = cache.NewMemory(30 * time.Second)

type productCreateDTO struct {
	SKU           string  `json:"sku" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	Price         float64 `json:"price" validate:"gte=0"`
	Stock         int     `json:"stock" validate:"gte=0"`
	MinStock      int     `json:"min_stock" validate:"gte=0"`
	MaxStock      int     `json:"max_stock" validate:"gte=0"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
}

type productUpdateDTO struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	PurchasePrice *float64 `json:"purchase_price"`
	Price         *float64 `json:"price"`
	MinStock      *int     `json:"min_stock"`
	MaxStock      *int     `json:"max_stock"`
	Unit          *string  `json:"unit"`
	Category      *string  `json:"category"`
	Active        *bool    `json:"active"`
}

func CreateProduct(c *fiber.Ctx) error {
	var dto productCreateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	product := models.Product{
		SKU:           dto.SKU,
		Name:          dto.Name,
		Description:   dto.Description,
		PurchasePrice: dto.PurchasePrice,
		Price:         dto.Price,
		Stock:         dto.Stock,
		MinStock:      dto.MinStock,
		MaxStock:      dto.MaxStock,
		Unit:          dto.Unit,
		Category:      dto.Category,
		Active:        true,
	}
	if err := database.DB.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Impossible de créer le produit",
			"error":   err.Error(),
		})
	}
	ProductCache.Invalidate(productListKey)
	return c.Status(fiber.StatusCreated).JSON(product)
}

func GetProducts(c *fiber.Ctx) error {
	if cached, ok := ProductCache.Get(productListKey); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(cached)
	}

	var products []models.Product
	if err := database.DB.Order("name").Find(&products).Error; err != nil {
		return err
	}
	body, err := json.Marshal(fiber.Map{"products": products})
	if err != nil {
		return err
	}
	ProductCache.Set(productListKey, body)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	var product models.Product
	err = database.DB.First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Produit introuvable"})
	}
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}

	var dto productUpdateDTO
	if err := c.BodyParser(&dto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizePtrDTO(&dto)
	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Aucune modification fournie"})
	}

	res := database.DB.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Produit introuvable"})
	}
	ProductCache.Invalidate(productListKey)

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		return err
	}
	return c.JSON(product)
}

// DeleteProduct deactivates rather than removes: sale items and stock
// movements keep referencing the row, and exports fall back to the unknown
// label only for rows that are truly gone.
func DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identifiant invalide"})
	}
	res := database.DB.Model(&models.Product{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Produit introuvable"})
	}
	ProductCache.Invalidate(productListKey)
	return c.JSON(fiber.Map{"message": "Produit désactivé"})
}

func GetStockMovements(c *fiber.Ctx) error {
	var movements []models.StockMovement
	q := database.DB.Order("created_at DESC").Limit(utils.ParseIntDefault(c.Query("limit"), 200))
	if productID := c.Query("product_id"); productID != "" {
		q = q.Where("product_id = ?", productID)
	}
	if movementType := c.Query("type"); movementType != "" {
		q = q.Where("type = ?", movementType)
	}
	if err := q.Find(&movements).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"movements": movements})
}
