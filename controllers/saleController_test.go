package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"gescom-backend/database"
	"gescom-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaleTestApp(t *testing.T, userID, role string) *fiber.App {
	t.Helper()
	app := newTestApp(t)
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		c.Locals("role", role)
		return c.Next()
	})
	app.Delete("/api/sales/:id", DeleteSale)
	return app
}

func seedBlockedSale(t *testing.T) models.Sale {
	t.Helper()
	product := models.Product{SKU: "SKU-1", Name: "Produit", Price: 25, Stock: 10, Active: true}
	require.NoError(t, database.DB.Create(&product).Error)
	sale := models.Sale{
		SaleNumber:  "VNT-000001",
		SellerID:    "seller-1",
		TotalAmount: 25,
		PaidAmount:  25,
		Status:      models.SaleStatusCompleted,
		Items:       []models.SaleItem{{ProductID: product.ID, Quantity: 1, UnitPrice: 25, Total: 25}},
	}
	require.NoError(t, database.DB.Create(&sale).Error)
	return sale
}

func deleteSaleStatus(t *testing.T, app *fiber.App, saleID uint) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete,
		"/api/sales/"+strconv.Itoa(int(saleID))+"?reason=annulation%20demandee", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	msg, _ := out["message"].(string)
	return resp.StatusCode, msg
}

func TestDeleteSaleBlockedByInvoiceReturnsBadRequest(t *testing.T) {
	app := newSaleTestApp(t, "owner-1", models.RoleOwner)
	sale := seedBlockedSale(t)
	invoice := models.Invoice{InvoiceNumber: "FAC-000001", SaleID: &sale.ID, Total: 25}
	require.NoError(t, database.DB.Create(&invoice).Error)

	status, msg := deleteSaleStatus(t, app, sale.ID)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, msg)
}

func TestDeleteSaleBlockedByCreditPaymentsReturnsBadRequest(t *testing.T) {
	app := newSaleTestApp(t, "owner-1", models.RoleOwner)
	sale := seedBlockedSale(t)
	payment := models.CreditPayment{SaleID: sale.ID, Amount: 10, Method: models.PaymentMethodCash}
	require.NoError(t, database.DB.Create(&payment).Error)

	status, msg := deleteSaleStatus(t, app, sale.ID)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, msg)
}

func TestDeleteSaleWindowClosedReturnsForbidden(t *testing.T) {
	app := newSaleTestApp(t, "seller-2", models.RoleSeller)
	sale := seedBlockedSale(t)

	// Not the original seller: the window rules deny it outright.
	status, _ := deleteSaleStatus(t, app, sale.ID)
	assert.Equal(t, http.StatusForbidden, status)
}
