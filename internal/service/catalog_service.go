package service

import (
	"context"
	"strings"

	"crewz/internal/models"
	"crewz/internal/repository"
)

// CatalogService serves the vehicle specification catalog.
type CatalogService struct {
	catalog repository.CatalogRepository
}

// CatalogQuery filters a catalog listing. Zero values match everything.
type CatalogQuery struct {
	Make   string
	Model  string
	Year   int
	Type   string
	Limit  int
	Offset int
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) List(ctx context.Context, q CatalogQuery) ([]models.CatalogVehicle, error) {
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	if q.Type != "" && q.Type != models.VehicleTypeCar && q.Type != models.VehicleTypeMotorcycle {
		return nil, models.NewValidationError("type must be one of: car motorcycle")
	}
	if q.Year < 0 {
		return nil, models.NewValidationError("year must be positive")
	}
	limit, offset := repository.Page(q.Limit, q.Offset)

	return s.catalog.List(ctx, repository.CatalogFilter{
		Make:   strings.TrimSpace(q.Make),
		Model:  strings.TrimSpace(q.Model),
		Year:   q.Year,
		Type:   q.Type,
		Limit:  limit,
		Offset: offset,
	})
}

// Seed loads rows into the catalog, skipping ones already present, and returns how many were added.
func (s *CatalogService) Seed(ctx context.Context, rows []models.CatalogVehicle) (int, error) {
	return s.catalog.Upsert(ctx, rows)
}

func (s *CatalogService) Count(ctx context.Context) (int64, error) {
	return s.catalog.Count(ctx)
}
