package repository

import (
	"context"
	"fmt"
	"strings"

	"crewz/internal/cache"
	"crewz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogFilter narrows a catalog listing. Zero values do not filter.
type CatalogFilter struct {
	Make   string
	Model  string
	Year   int
	Type   string
	Limit  int
	Offset int
}

func (f CatalogFilter) cacheKey() string {
	return cache.CatalogKey(fmt.Sprintf("make=%s|model=%s|year=%d|type=%s|l=%d|o=%d",
		strings.ToLower(f.Make), strings.ToLower(f.Model), f.Year, f.Type, f.Limit, f.Offset))
}

// CatalogRepository serves the read-mostly vehicle specification catalog.
type CatalogRepository interface {
	List(ctx context.Context, f CatalogFilter) ([]models.CatalogVehicle, error)
	Upsert(ctx context.Context, rows []models.CatalogVehicle) (int, error)
	Count(ctx context.Context) (int64, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) List(ctx context.Context, f CatalogFilter) ([]models.CatalogVehicle, error) {
	f.Limit, f.Offset = Page(f.Limit, f.Offset)

	rows := []models.CatalogVehicle{}
	err := cache.Aside(ctx, f.cacheKey(), &rows, cache.CatalogTTL, func() error {
		db := r.db.WithContext(ctx)
		if f.Make != "" {
			db = db.Where("LOWER(make) = ?", strings.ToLower(f.Make))
		}
		if f.Model != "" {
			db = db.Where(`LOWER(model) LIKE ? ESCAPE '\'`, likePattern(f.Model))
		}
		if f.Year != 0 {
			db = db.Where("year = ?", f.Year)
		}
		if f.Type != "" {
			db = db.Where("type = ?", f.Type)
		}
		return db.Order("make ASC, model ASC, year DESC").
			Limit(f.Limit).
			Offset(f.Offset).
			Find(&rows).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// Upsert inserts catalog rows that are not already present by (make, model, year) and returns
// how many were added.
func (r *catalogRepository) Upsert(ctx context.Context, rows []models.CatalogVehicle) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "make"}, {Name: "model"}, {Name: "year"}},
			DoNothing: true,
		}).
		CreateInBatches(&rows, 100)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateCatalog(ctx)
	}
	return int(res.RowsAffected), nil
}

func (r *catalogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.CatalogVehicle{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
