package routes

import (
	"github.com/gofiber/fiber/v2"

	"gescom-backend/controllers"
	"gescom-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/register", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticated())

	// Idempotency guard FIRST (payments and imports must never double-apply)
	protected.Use(middlewares.Idempotency())

	// Users (owner only)
	protected.Post("/users", middlewares.RequireOwner(), controllers.CreateUser)
	protected.Get("/users", middlewares.RequireOwner(), controllers.GetUsers)

	// Company settings
	protected.Get("/settings", controllers.GetSettings)
	protected.Put("/settings", middlewares.RequireOwner(), controllers.UpdateSettings)

	// Products & stock
	protected.Post("/products", controllers.CreateProduct)
	protected.Get("/products", controllers.GetProducts)
	protected.Get("/products/:id", controllers.GetProduct)
	protected.Put("/products/:id", controllers.UpdateProduct)
	protected.Delete("/products/:id", controllers.DeleteProduct)
	protected.Get("/stock/movements", controllers.GetStockMovements)

	// Customers
	protected.Post("/customers", controllers.CreateCustomer)
	protected.Get("/customers", controllers.GetCustomers)
	protected.Get("/customers/:id", controllers.GetCustomer)
	protected.Put("/customers/:id", controllers.UpdateCustomer)

	// Sales (edit/delete are permission/time windowed in the services layer)
	protected.Post("/sales", controllers.CreateSale)
	protected.Get("/sales", controllers.GetSales)
	protected.Get("/sales/:id", controllers.GetSale)
	protected.Put("/sales/:id", controllers.UpdateSale)
	protected.Delete("/sales/:id", controllers.DeleteSale)

	// Credit payments
	protected.Post("/credit/payments", controllers.CreateCreditPayment)
	protected.Get("/credit/payments", controllers.GetCreditPayments)

	// Suppliers
	protected.Post("/suppliers", controllers.CreateSupplier)
	protected.Get("/suppliers", controllers.GetSuppliers)
	protected.Get("/suppliers/:id", controllers.GetSupplier)
	protected.Put("/suppliers/:id", controllers.UpdateSupplier)
	protected.Post("/suppliers/:id/transactions", controllers.CreateSupplierTransaction)

	// Invoices & quotes
	protected.Post("/invoices", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoices/:id", controllers.GetInvoice)
	protected.Delete("/invoices/:id", controllers.DeleteInvoice)
	protected.Post("/quotes", controllers.CreateQuote)
	protected.Get("/quotes", controllers.GetQuotes)
	protected.Get("/quotes/:id", controllers.GetQuote)
	protected.Delete("/quotes/:id", controllers.DeleteQuote)

	// Backup (owner only)
	backup := protected.Group("/backup", middlewares.RequireOwner())
	backup.Get("/export", controllers.ExportBackup)
	backup.Post("/import", controllers.ImportBackup)
	backup.Get("/history", controllers.GetBackupHistory)
}
