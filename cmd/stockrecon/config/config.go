// Package config loads the reference data files the CLI feeds to the
// reconciliation engine and builds the component configurations from
// CLI flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"stock-reconciliation-service/internal/matcher"
	"stock-reconciliation-service/internal/models"
	"stock-reconciliation-service/internal/workbook"
	"stock-reconciliation-service/pkg/errors"
)

// ReferenceData bundles the catalog files a reconciliation run needs.
// Conversions and Recipes are optional; an empty slice disables
// split-unit aggregation and raw-material consumption respectively.
type ReferenceData struct {
	Products    []models.Product
	StockChecks []models.StockCheck
	Conversions []models.ProductConversion
	Recipes     []models.Recipe
}

// LoadReferenceData reads the JSON reference files. productsPath and
// stockChecksPath are required; conversionsPath and recipesPath may be
// empty.
func LoadReferenceData(productsPath, stockChecksPath, conversionsPath, recipesPath string) (*ReferenceData, error) {
	data := &ReferenceData{}

	if err := loadJSONFile(productsPath, &data.Products); err != nil {
		return nil, err
	}
	if len(data.Products) == 0 {
		return nil, errors.ValidationError(errors.CodeMissingField, "products", productsPath,
			fmt.Errorf("product catalog is empty"))
	}
	for i := range data.Products {
		if err := data.Products[i].Validate(); err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidData, "products", data.Products[i].ID, err)
		}
	}

	if err := loadJSONFile(stockChecksPath, &data.StockChecks); err != nil {
		return nil, err
	}
	for i := range data.StockChecks {
		if err := data.StockChecks[i].Validate(); err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidData, "stock-checks", data.StockChecks[i].ID, err)
		}
	}

	if conversionsPath != "" {
		if err := loadJSONFile(conversionsPath, &data.Conversions); err != nil {
			return nil, err
		}
	}
	if recipesPath != "" {
		if err := loadJSONFile(recipesPath, &data.Recipes); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// LoadJSON reads a JSON file into target, wrapping failures in the
// file error category.
func LoadJSON(path string, target interface{}) error {
	return loadJSONFile(path, target)
}

func loadJSONFile(path string, target interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.FileError(errors.CodeFileUnreadable, path, err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return errors.FileError(errors.CodeFileUnreadable, path,
			fmt.Errorf("invalid JSON: %w", err)).
			WithSuggestion("Check that the file is a JSON array in the expected schema")
	}

	return nil
}

// CreateMatcherConfig creates a matcher configuration with the
// CLI-specified auto-match threshold.
func CreateMatcherConfig(minAutoMatchScore float64) (*matcher.Config, error) {
	config := matcher.DefaultConfig()

	if minAutoMatchScore > 0 {
		config.MinAutoMatchScore = minAutoMatchScore
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidConfig, "min-auto-match-score", minAutoMatchScore, err)
	}

	return config, nil
}

// CreateSalesParserConfig creates the sales workbook parser configuration
func CreateSalesParserConfig() *workbook.SalesParserConfig {
	return workbook.DefaultSalesParserConfig()
}

// CreateKitchenParserConfig creates the kitchen workbook parser configuration
func CreateKitchenParserConfig() *workbook.KitchenParserConfig {
	return workbook.DefaultKitchenParserConfig()
}
