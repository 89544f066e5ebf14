package services

import (
	"testing"
	"time"

	"gescom-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, sku string, stock int, price float64) models.Product {
	t.Helper()
	product := models.Product{SKU: sku, Name: "Produit " + sku, Price: price, Stock: stock, Active: true}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedCustomer(t *testing.T, db *gorm.DB, limit, used float64) models.Customer {
	t.Helper()
	customer := models.Customer{Name: "Hassan", CreditLimit: limit, CreditUsed: used, IsActive: true}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)

	sale, err := CreateSale(db, SaleInput{
		SellerID:      seller.Id,
		Items:         []SaleItemInput{{ProductID: product.ID, Quantity: 3}},
		PaymentMethod: models.PaymentMethodCash,
		AmountPaid:    75,
	})
	require.NoError(t, err)
	assert.Equal(t, "VNT-000001", sale.SaleNumber)
	assert.Equal(t, 75.0, sale.TotalAmount)
	assert.Equal(t, models.SaleStatusCompleted, sale.Status)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 7, reloaded.Stock)

	var movements []models.StockMovement
	require.NoError(t, db.Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementOut, movements[0].Type)
	assert.Equal(t, -3, movements[0].Quantity)
	assert.Equal(t, sale.SaleNumber, movements[0].Reference)
}

func TestCreateSaleRejectsInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 2, 25)

	_, err := CreateSale(db, SaleInput{
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 3}},
		AmountPaid: 75,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 2, reloaded.Stock)
}

func TestCreateSaleWalkInMustBeFullyPaid(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)

	_, err := CreateSale(db, SaleInput{
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
		AmountPaid: 10,
	})
	assert.ErrorIs(t, err, ErrWalkInCredit)
}

func TestCreateSaleEnforcesCreditLimit(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 100)
	customer := seedCustomer(t, db, 150, 100)

	_, err := CreateSale(db, SaleInput{
		CustomerID: &customer.ID,
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 1}},
		AmountPaid: 0,
	})
	assert.ErrorIs(t, err, ErrCreditLimitExceeded)

	// Within the limit it goes through and raises credit_used.
	_, err = CreateSale(db, SaleInput{
		CustomerID: &customer.ID,
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 1}},
		AmountPaid: 60,
	})
	require.NoError(t, err)

	var c models.Customer
	require.NoError(t, db.First(&c, customer.ID).Error)
	assert.Equal(t, 140.0, c.CreditUsed)
}

func TestEditSaleConservesStock(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)

	sale, err := CreateSale(db, SaleInput{
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 3}},
		AmountPaid: 75,
	})
	require.NoError(t, err)

	updated, err := EditSale(db, sale.ID, seller.Id, models.RoleSeller, SaleInput{
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 5}},
		AmountPaid: 125,
	}, "erreur de saisie quantité")
	require.NoError(t, err)
	assert.Equal(t, 125.0, updated.TotalAmount)

	// 10 - 3, then +3 back, then -5.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 5, reloaded.Stock)

	var movements []models.StockMovement
	require.NoError(t, db.Order("id").Find(&movements).Error)
	require.Len(t, movements, 4)
	assert.Equal(t, models.MovementOut, movements[0].Type)
	assert.Equal(t, -3, movements[0].Quantity)
	assert.Equal(t, models.MovementIn, movements[1].Type)
	assert.Equal(t, 3, movements[1].Quantity)
	assert.Equal(t, models.MovementOut, movements[2].Type)
	assert.Equal(t, -5, movements[2].Quantity)
	assert.Equal(t, models.MovementCorrection, movements[3].Type)
	assert.Zero(t, movements[3].Quantity)
	assert.Equal(t, "erreur de saisie quantité", movements[3].Reason)
}

func TestEditSaleRequiresReason(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)

	sale, err := CreateSale(db, SaleInput{
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 1}},
		AmountPaid: 25,
	})
	require.NoError(t, err)

	_, err = EditSale(db, sale.ID, seller.Id, models.RoleSeller, SaleInput{
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
		AmountPaid: 50,
	}, "oui")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestEditSaleWindows(t *testing.T) {
	now := time.Now()
	seller := &models.Sale{SellerID: "seller-1", CreatedAt: now.Add(-23 * time.Hour)}
	old := &models.Sale{SellerID: "seller-1", CreatedAt: now.Add(-25 * time.Hour)}

	assert.True(t, CanEditSale(seller, "seller-1", models.RoleSeller, now))
	assert.False(t, CanEditSale(old, "seller-1", models.RoleSeller, now))
	assert.False(t, CanEditSale(seller, "seller-2", models.RoleSeller, now))
	assert.True(t, CanEditSale(old, "anyone", models.RoleOwner, now))

	recent := &models.Sale{SellerID: "seller-1", CreatedAt: now.Add(-1 * time.Hour)}
	stale := &models.Sale{SellerID: "seller-1", CreatedAt: now.Add(-3 * time.Hour)}
	assert.True(t, CanDeleteSale(recent, "seller-1", models.RoleSeller, now))
	assert.False(t, CanDeleteSale(stale, "seller-1", models.RoleSeller, now))
	assert.True(t, CanDeleteSale(stale, "anyone", models.RoleOwner, now))
}

func TestEditSaleWindowClosed(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)

	sale := models.Sale{
		SaleNumber:  "VNT-000001",
		SellerID:    seller.Id,
		TotalAmount: 25,
		PaidAmount:  25,
		Status:      models.SaleStatusCompleted,
		CreatedAt:   time.Now().Add(-25 * time.Hour),
		Items:       []models.SaleItem{{ProductID: product.ID, Quantity: 1, UnitPrice: 25, Total: 25}},
	}
	require.NoError(t, db.Create(&sale).Error)

	_, err := EditSale(db, sale.ID, seller.Id, models.RoleSeller, SaleInput{
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
		AmountPaid: 50,
	}, "changement de quantité")
	assert.ErrorIs(t, err, ErrEditWindowClosed)

	// The owner is not bound by the window.
	_, err = EditSale(db, sale.ID, "owner-x", models.RoleOwner, SaleInput{
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
		AmountPaid: 50,
	}, "changement de quantité")
	require.NoError(t, err)
}

func TestEditSaleBlockedByCreditPayments(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)
	customer := seedCustomer(t, db, 1000, 0)

	sale, err := CreateSale(db, SaleInput{
		CustomerID: &customer.ID,
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 1}},
		AmountPaid: 0,
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.CreditPayment{SaleID: sale.ID, Amount: 10, Method: models.PaymentMethodCash}).Error)

	_, err = EditSale(db, sale.ID, seller.Id, models.RoleSeller, SaleInput{
		CustomerID: &customer.ID,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
		AmountPaid: 0,
	}, "changement de quantité")
	assert.ErrorIs(t, err, ErrHasCreditPayments)
}

func TestDeleteSaleRestoresStockAndCredit(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)
	customer := seedCustomer(t, db, 1000, 0)

	sale, err := CreateSale(db, SaleInput{
		CustomerID: &customer.ID,
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 4}},
		AmountPaid: 0,
	})
	require.NoError(t, err)

	var c models.Customer
	require.NoError(t, db.First(&c, customer.ID).Error)
	require.Equal(t, 100.0, c.CreditUsed)

	require.NoError(t, DeleteSale(db, sale.ID, seller.Id, models.RoleSeller, "vente annulée par le client"))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)

	require.NoError(t, db.First(&c, customer.ID).Error)
	assert.Zero(t, c.CreditUsed)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.SaleItem{}).Count(&count).Error)
	assert.Zero(t, count)

	var last models.StockMovement
	require.NoError(t, db.Order("id DESC").First(&last).Error)
	assert.Equal(t, models.MovementDeletion, last.Type)
	assert.Equal(t, "vente annulée par le client", last.Reason)
}

func TestDeleteSaleBlockedByInvoice(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db, models.RoleSeller)
	product := seedProduct(t, db, "SKU-1", 10, 25)

	sale, err := CreateSale(db, SaleInput{
		SellerID:   seller.Id,
		Items:      []SaleItemInput{{ProductID: product.ID, Quantity: 1}},
		AmountPaid: 25,
	})
	require.NoError(t, err)

	invoice := models.Invoice{InvoiceNumber: "FAC-000001", SaleID: &sale.ID, Total: 25}
	require.NoError(t, db.Create(&invoice).Error)

	err = DeleteSale(db, sale.ID, seller.Id, models.RoleSeller, "vente annulée par le client")
	assert.ErrorIs(t, err, ErrSaleReferenced)
}
