package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"gescom-backend/backup"
	"gescom-backend/database"
	"gescom-backend/middlewares"
	"gescom-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// An in-memory sqlite database is per-connection; pin the pool to one
	// so concurrent reads see the same store.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	return fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
}

type importResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Stats   backup.Stats `json:"stats"`
	Errors  []string     `json:"errors"`
}

func postImport(t *testing.T, app *fiber.App, doc backup.Document) importResponse {
	t.Helper()
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "backup.json")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/backup/import", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out importResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestImportReportsPartialFailure(t *testing.T) {
	app := newTestApp(t)
	app.Post("/api/backup/import", ImportBackup)

	doc := backup.Document{Metadata: backup.Metadata{Version: backup.CurrentVersion}}
	doc.Data.Products = []backup.ProductRecord{
		{ID: 1, SKU: "SKU-1", Name: "Produit", Active: true},
		{ID: 2, SKU: "SKU-1", Name: "Doublon", Active: true},
	}

	out := postImport(t, app, doc)

	// One bad row among good ones: the good rows commit, but the import
	// must not claim full success.
	assert.False(t, out.Success)
	assert.Equal(t, 1, out.Stats.ProductsImported)
	assert.Equal(t, 1, out.Stats.Errors)
	require.Len(t, out.Errors, 1)

	var count int64
	require.NoError(t, database.DB.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportReportsSuccessWithoutRowErrors(t *testing.T) {
	app := newTestApp(t)
	app.Post("/api/backup/import", ImportBackup)

	doc := backup.Document{Metadata: backup.Metadata{Version: backup.CurrentVersion}}
	doc.Data.Products = []backup.ProductRecord{
		{ID: 1, SKU: "SKU-1", Name: "Produit", Active: true},
		{ID: 2, SKU: "SKU-2", Name: "Produit", Active: true},
	}

	out := postImport(t, app, doc)

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Stats.ProductsImported)
	assert.Zero(t, out.Stats.Errors)
	assert.Empty(t, out.Errors)
}

func TestExportFailureEnvelope(t *testing.T) {
	app := newTestApp(t)
	app.Get("/api/backup/export", ExportBackup)

	require.NoError(t, database.DB.Exec("DROP TABLE products").Error)

	req := httptest.NewRequest(http.MethodGet, "/api/backup/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "details")
	assert.Contains(t, out, "timestamp")
	assert.Contains(t, out, "processingTime")
}

func TestExportHeaders(t *testing.T) {
	app := newTestApp(t)
	app.Get("/api/backup/export", ExportBackup)

	product := models.Product{SKU: "SKU-1", Name: "Produit", Active: true}
	require.NoError(t, database.DB.Create(&product).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/backup/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "1", resp.Header.Get("X-Total-Records"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	assert.NotEmpty(t, resp.Header.Get("X-File-Size"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var doc backup.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 1, doc.Metadata.TotalRecords)
}
