package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"gescom-backend/backup"
	"gescom-backend/database"
	"gescom-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// ImportOptions is the `options` part of the multipart import request.
// merge_strategy is parsed for forward compatibility; only merge semantics
// are implemented.
type ImportOptions struct {
	ValidateRelations        *bool  `json:"validate_relations"`
	CreateBackupBeforeImport bool   `json:"create_backup_before_import"`
	MergeStrategy            string `json:"merge_strategy"`
}

func ExportBackup(c *fiber.Ctx) error {
	start := time.Now()

	doc, err := backup.Export(database.DB)
	if err != nil {
		return exportFailure(c, start, "Échec de l'export", err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return exportFailure(c, start, "Échec de la sérialisation", err)
	}
	originalSize := len(payload)

	compress := c.Query("compress") == "true" && c.Query("format") == "gzip"
	filename := fmt.Sprintf("backup-%s.json", time.Now().Format("2006-01-02"))
	contentType := fiber.MIMEApplicationJSON

	if compress {
		// The compressed flag is part of the checksummed content, so the
		// checksum must be re-stamped after flipping it.
		doc.Metadata.Compressed = true
		doc.Metadata.Checksum, err = backup.ComputeChecksum(*doc)
		if err != nil {
			return exportFailure(c, start, "Échec du calcul de la somme de contrôle", err)
		}
		payload, err = json.Marshal(doc)
		if err != nil {
			return exportFailure(c, start, "Échec de la sérialisation", err)
		}
		originalSize = len(payload)
		payload, err = backup.Compress(payload)
		if err != nil {
			return exportFailure(c, start, "Échec de la compression", err)
		}
		filename += ".gz"
		contentType = "application/gzip"
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set("X-Total-Records", strconv.Itoa(doc.Metadata.TotalRecords))
	c.Set("X-File-Size", strconv.Itoa(len(payload)))
	c.Set("X-Original-Size", strconv.Itoa(originalSize))
	c.Set("X-Processing-Time", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
	if compress {
		c.Set("X-Compressed-Size", strconv.Itoa(len(payload)))
		if originalSize > 0 {
			ratio := float64(len(payload)) / float64(originalSize)
			c.Set("X-Compression-Ratio", strconv.FormatFloat(ratio, 'f', 2, 64))
		}
	}
	return c.Send(payload)
}

func ImportBackup(c *fiber.Ctx) error {
	start := time.Now()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return importFailure(c, start, "Aucun fichier fourni")
	}

	opts := ImportOptions{}
	if rawOpts := c.FormValue("options"); rawOpts != "" {
		if err := json.Unmarshal([]byte(rawOpts), &opts); err != nil {
			return importFailure(c, start, "Options d'import invalides")
		}
	}
	validateRelations := true
	if opts.ValidateRelations != nil {
		validateRelations = *opts.ValidateRelations
	}

	f, err := fileHeader.Open()
	if err != nil {
		return importFailure(c, start, "Impossible de lire le fichier")
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return importFailure(c, start, "Impossible de lire le fichier")
	}

	if backup.IsCompressed(fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType)) {
		raw, err = backup.Decompress(raw)
		if err != nil {
			return importFailure(c, start, err.Error())
		}
	}

	if res := backup.ValidateStructure(raw); !res.Valid {
		return importFailure(c, start, "Structure de sauvegarde invalide: "+res.Message())
	}

	var doc backup.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return importFailure(c, start, "Le fichier n'est pas un JSON valide")
	}

	if err := backup.CheckVersion(doc.Metadata.Version); err != nil {
		return importFailure(c, start, err.Error())
	}

	if validateRelations && doc.Metadata.Checksum != "" {
		match, err := backup.VerifyChecksum(doc)
		if err != nil {
			// Verification itself failing is not evidence of tampering;
			// proceed and let structural replay catch real corruption.
			log.Printf("backup import: checksum verification errored, continuing: %v", err)
		} else if !match {
			return importFailure(c, start, "La somme de contrôle ne correspond pas, fichier corrompu")
		}
	}

	if opts.CreateBackupBeforeImport {
		if err := snapshotBeforeImport(fileHeader.Filename); err != nil {
			// Best-effort safeguard; the import itself proceeds.
			log.Printf("backup import: pre-import snapshot failed: %v", err)
		}
	}

	result, err := backup.Restore(database.DB, &doc)
	ProductCache.Invalidate(productListKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":        false,
			"message":        "Échec de l'import",
			"error":          err.Error(),
			"processingTime": time.Since(start).Milliseconds(),
		})
	}

	// Best-effort replay commits the surviving rows, but any per-row
	// failure still marks the import as not fully successful.
	return c.JSON(fiber.Map{
		"success":        result.Stats.Errors == 0,
		"message":        "Import terminé",
		"stats":          result.Stats,
		"errors":         result.Errors,
		"processingTime": time.Since(start).Milliseconds(),
	})
}

func GetBackupHistory(c *fiber.Ctx) error {
	var records []models.BackupRecord
	if err := database.DB.Order("created_at DESC").Limit(50).Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Impossible de charger l'historique",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"backups": records})
}

// snapshotBeforeImport exports the current state and stores it server-side,
// so a bad import can be undone by re-importing the stored payload.
func snapshotBeforeImport(importFilename string) error {
	doc, err := backup.Export(database.DB)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	record := models.BackupRecord{
		Filename:     fmt.Sprintf("pre-import-%s-%s.json", time.Now().Format("20060102-150405"), importFilename),
		Payload:      datatypes.JSON(payload),
		TotalRecords: doc.Metadata.TotalRecords,
	}
	return database.DB.Create(&record).Error
}

func exportFailure(c *fiber.Ctx, start time.Time, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":          message,
		"details":        err.Error(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"processingTime": time.Since(start).Milliseconds(),
	})
}

func importFailure(c *fiber.Ctx, start time.Time, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success":        false,
		"message":        message,
		"processingTime": time.Since(start).Milliseconds(),
	})
}
