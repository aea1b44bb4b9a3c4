package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// ImportResult counts what an ingredient import did
type ImportResult struct {
	Created int
	Existed int
}

// IngredientImporter loads "name,measurement_unit" rows into the catalogue.
// Rows matching an existing (name, unit) pair are left untouched.
type IngredientImporter struct {
	db *gorm.DB
}

func NewIngredientImporter(db *gorm.DB) *IngredientImporter {
	return &IngredientImporter{db: db}
}

func (im *IngredientImporter) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for line := 1; ; line++ {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read row %d: %w", line, err)
			}

			name := strings.TrimSpace(record[0])
			unit := strings.TrimSpace(record[1])
			if name == "" || unit == "" {
				return fmt.Errorf("row %d: name and measurement unit are required", line)
			}

			var existing models.Ingredient
			err = tx.Where("name = ? AND measurement_unit = ?", name, unit).First(&existing).Error
			switch {
			case err == nil:
				result.Existed++
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&models.Ingredient{Name: name, MeasurementUnit: unit}).Error; err != nil {
					return fmt.Errorf("row %d: %w", line, err)
				}
				result.Created++
			default:
				return fmt.Errorf("row %d: %w", line, err)
			}
		}
	})
	if err != nil {
		return ImportResult{}, err
	}

	log.WithField("created", result.Created).WithField("existed", result.Existed).Info("Ingredients imported")
	return result, nil
}
