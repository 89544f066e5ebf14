package services

import (
	"testing"
	"time"

	"gescom-backend/database"
	"gescom-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedSeller(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	user := models.User{Name: "Karim", Email: role + "@example.com", Role: role, Password: []byte("x")}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedCreditSales creates a customer with three open credit sales of the
// given amounts, oldest first, and credit_used equal to their sum.
func seedCreditSales(t *testing.T, db *gorm.DB, amounts ...float64) (models.Customer, []models.Sale) {
	t.Helper()
	seller := seedSeller(t, db, models.RoleOwner)

	total := 0.0
	for _, a := range amounts {
		total += a
	}
	customer := models.Customer{Name: "Hassan", CreditLimit: 10000, CreditUsed: total, IsActive: true}
	require.NoError(t, db.Create(&customer).Error)

	base := time.Now().Add(-time.Duration(len(amounts)) * time.Hour)
	sales := make([]models.Sale, 0, len(amounts))
	for i, a := range amounts {
		sale := models.Sale{
			SaleNumber:    "VNT-00000" + string(rune('1'+i)),
			CustomerID:    &customer.ID,
			SellerID:      seller.Id,
			TotalAmount:   a,
			CreditAmount:  a,
			PaymentMethod: models.PaymentMethodCredit,
			Status:        models.SaleStatusPending,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(&sale).Error)
		sales = append(sales, sale)
	}
	return customer, sales
}

func TestApplyCreditPaymentFIFO(t *testing.T) {
	db := newTestDB(t)
	customer, _ := seedCreditSales(t, db, 100, 50, 30)

	payments, err := ApplyCreditPayment(db, PaymentInput{
		CustomerID: customer.ID,
		Amount:     120,
		Method:     models.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, 100.0, payments[0].Amount)
	assert.Equal(t, 20.0, payments[1].Amount)

	var reloaded []models.Sale
	require.NoError(t, db.Order("created_at").Find(&reloaded).Error)
	assert.Equal(t, 0.0, reloaded[0].Outstanding())
	assert.Equal(t, models.SaleStatusCompleted, reloaded[0].Status)
	assert.Equal(t, 30.0, reloaded[1].Outstanding())
	assert.Equal(t, models.SaleStatusPending, reloaded[1].Status)
	assert.Equal(t, 30.0, reloaded[2].Outstanding())

	var c models.Customer
	require.NoError(t, db.First(&c, customer.ID).Error)
	assert.Equal(t, 60.0, c.CreditUsed)
}

func TestApplyCreditPaymentRejectsOverpayment(t *testing.T) {
	db := newTestDB(t)
	customer, _ := seedCreditSales(t, db, 100)

	_, err := ApplyCreditPayment(db, PaymentInput{
		CustomerID: customer.ID,
		Amount:     150,
		Method:     models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrOverpayment)

	// Rejected before any mutation.
	var c models.Customer
	require.NoError(t, db.First(&c, customer.ID).Error)
	assert.Equal(t, 100.0, c.CreditUsed)
	var count int64
	require.NoError(t, db.Model(&models.CreditPayment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyCreditPaymentRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	_, err := ApplyCreditPayment(db, PaymentInput{CustomerID: 1, Amount: 0, Method: models.PaymentMethodCash})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ApplyCreditPayment(db, PaymentInput{CustomerID: 1, Amount: -5, Method: models.PaymentMethodCash})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyCreditPaymentManualMode(t *testing.T) {
	db := newTestDB(t)
	customer, sales := seedCreditSales(t, db, 100, 50, 30)

	// Caller targets the newest sale first; allocation follows that order.
	payments, err := ApplyCreditPayment(db, PaymentInput{
		CustomerID: customer.ID,
		Amount:     40,
		Method:     models.PaymentMethodCash,
		Mode:       PaymentModeManual,
		SaleIDs:    []uint{sales[2].ID, sales[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, sales[2].ID, payments[0].SaleID)
	assert.Equal(t, 30.0, payments[0].Amount)
	assert.Equal(t, sales[0].ID, payments[1].SaleID)
	assert.Equal(t, 10.0, payments[1].Amount)

	var untouched models.Sale
	require.NoError(t, db.First(&untouched, sales[1].ID).Error)
	assert.Equal(t, 50.0, untouched.Outstanding())
}

func TestApplyCreditPaymentManualModeRequiresSales(t *testing.T) {
	db := newTestDB(t)
	customer, _ := seedCreditSales(t, db, 100)

	_, err := ApplyCreditPayment(db, PaymentInput{
		CustomerID: customer.ID,
		Amount:     50,
		Method:     models.PaymentMethodCash,
		Mode:       PaymentModeManual,
	})
	assert.ErrorIs(t, err, ErrNoSalesSelected)
}

func TestApplyCreditPaymentCheckMethod(t *testing.T) {
	db := newTestDB(t)
	customer, sales := seedCreditSales(t, db, 100)

	_, err := ApplyCreditPayment(db, PaymentInput{
		CustomerID: customer.ID,
		Amount:     50,
		Method:     models.PaymentMethodCheck,
	})
	assert.ErrorIs(t, err, ErrCheckDataRequired)

	payments, err := ApplyCreditPayment(db, PaymentInput{
		CustomerID: customer.ID,
		Amount:     50,
		Method:     models.PaymentMethodCheck,
		Check: &CheckData{
			Number:      "CHQ-778",
			Issuer:      "Hassan",
			Beneficiary: "Droguerie Atlas",
			DueDate:     time.Now().Add(30 * 24 * time.Hour),
		},
	})
	require.NoError(t, err)
	require.Len(t, payments, 1)

	var check models.Check
	require.NoError(t, db.First(&check).Error)
	assert.Equal(t, "CHQ-778", check.Number)
	assert.Equal(t, 50.0, check.Amount)
	require.NotNil(t, check.SaleID)
	assert.Equal(t, sales[0].ID, *check.SaleID)
}
