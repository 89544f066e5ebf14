package controllers

import (
	"net/mail"
	"time"

	"gescom-backend/database"
	"gescom-backend/middlewares"
	"gescom-backend/models"

	"github.com/gofiber/fiber/v2"
)

// Register creates the first user as OWNER (bootstrap). Once an owner
// exists, only an authenticated owner may create additional SELLER
// accounts, via CreateUser.
func Register(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Format d'email invalide",
		})
	}
	if data["password"] != data["password_confirm"] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Les mots de passe ne correspondent pas",
		})
	}

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Un compte propriétaire existe déjà",
		})
	}

	user := models.User{
		Name:  data["name"],
		Email: data["email"],
		Role:  models.RoleOwner,
	}
	user.SetPassword(data["password"])
	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Impossible de créer l'utilisateur",
			"error":   err.Error(),
		})
	}

	// Bootstrap the settings singleton alongside the first account.
	var settingsCount int64
	database.DB.Model(&models.CompanySettings{}).Count(&settingsCount)
	if settingsCount == 0 {
		settings := models.DefaultSettings()
		if name := data["company_name"]; name != "" {
			settings.Name = name
		}
		database.DB.Create(&settings)
	}

	return c.JSON(user)
}

// CreateUser lets the owner add seller accounts.
func CreateUser(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Format d'email invalide",
		})
	}

	var mailExist models.User
	database.DB.Where("email = ?", data["email"]).First(&mailExist)
	if mailExist.Email != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cet email est déjà utilisé",
		})
	}

	role := data["role"]
	if role != models.RoleOwner {
		role = models.RoleSeller
	}

	user := models.User{
		Name:  data["name"],
		Email: data["email"],
		Role:  role,
	}
	user.SetPassword(data["password"])
	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Impossible de créer l'utilisateur",
			"error":   err.Error(),
		})
	}
	return c.JSON(user)
}

func GetUsers(c *fiber.Ctx) error {
	var users []models.User
	database.DB.Order("created_at").Find(&users)
	return c.JSON(fiber.Map{"users": users})
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Format d'email invalide",
		})
	}

	var user models.User
	database.DB.Where("email = ?", data["email"]).First(&user)
	if user.Id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Identifiants invalides",
		})
	}
	if err := user.ComparePassword(data["password"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Identifiants invalides",
		})
	}

	token, err := middlewares.GenerateJWT(user.Id, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Impossible de générer le jeton",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
