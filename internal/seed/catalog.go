// Package seed loads the vehicle catalog and generates demo data for development.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Vehicles []models.CatalogVehicle `yaml:"vehicles"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() ([]models.CatalogVehicle, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a catalog document and rejects rows missing make, model, year or a known type.
func ParseCatalog(raw []byte) ([]models.CatalogVehicle, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, v := range file.Vehicles {
		if v.Make == "" || v.Model == "" || v.Year == 0 {
			return nil, fmt.Errorf("catalog row %d: make, model and year are required", i)
		}
		if v.Type != models.VehicleTypeCar && v.Type != models.VehicleTypeMotorcycle {
			return nil, fmt.Errorf("catalog row %d: unknown type %q", i, v.Type)
		}
	}
	return file.Vehicles, nil
}

// Catalog loads the embedded catalog through svc. Rows already present are left alone.
func Catalog(ctx context.Context, svc *service.CatalogService) (int, error) {
	rows, err := LoadCatalog()
	if err != nil {
		return 0, err
	}
	added, err := svc.Seed(ctx, rows)
	if err != nil {
		return 0, err
	}
	middleware.Logger.InfoContext(ctx, "catalog seeded",
		slog.Int("rows", len(rows)),
		slog.Int("added", added),
	)
	return added, nil
}
