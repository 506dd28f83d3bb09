package repository

import (
	"context"
	"testing"

	"crewz/internal/cache"
	"crewz/internal/models"
	"crewz/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogRows() []models.CatalogVehicle {
	return []models.CatalogVehicle{
		{Make: "Toyota", Model: "Supra", Year: 1998, Type: models.VehicleTypeCar, Engine: "2JZ-GTE", Horsepower: 320},
		{Make: "Toyota", Model: "GR Supra", Year: 2023, Type: models.VehicleTypeCar, Engine: "B58", Horsepower: 382},
		{Make: "Honda", Model: "CBR600RR", Year: 2021, Type: models.VehicleTypeMotorcycle, Horsepower: 118},
	}
}

func TestCatalogRepository_UpsertIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	added, err := repo.Upsert(ctx, catalogRows())
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = repo.Upsert(ctx, catalogRows())
	require.NoError(t, err)
	assert.Zero(t, added)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCatalogRepository_Filters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()
	_, err := repo.Upsert(ctx, catalogRows())
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter CatalogFilter
		want   int
	}{
		{"all", CatalogFilter{}, 3},
		{"make is case-insensitive", CatalogFilter{Make: "toyota"}, 2},
		{"model substring", CatalogFilter{Model: "supra"}, 2},
		{"year", CatalogFilter{Year: 1998}, 1},
		{"type", CatalogFilter{Type: models.VehicleTypeMotorcycle}, 1},
		{"combined", CatalogFilter{Make: "Toyota", Year: 2023}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCatalogRepository_ListIsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()
	_, err := repo.Upsert(ctx, catalogRows())
	require.NoError(t, err)

	first, err := repo.List(ctx, CatalogFilter{Make: "Honda"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.NotEmpty(t, mr.Keys())

	// Served from cache even after the row is gone from the table.
	require.NoError(t, db.Where("make = ?", "Honda").Delete(&models.CatalogVehicle{}).Error)
	second, err := repo.List(ctx, CatalogFilter{Make: "Honda"})
	require.NoError(t, err)
	assert.Len(t, second, 1)

	_, err = repo.Upsert(ctx, []models.CatalogVehicle{{Make: "Ducati", Model: "Panigale V4", Year: 2024, Type: models.VehicleTypeMotorcycle}})
	require.NoError(t, err)
	third, err := repo.List(ctx, CatalogFilter{Make: "Honda"})
	require.NoError(t, err)
	assert.Empty(t, third)
}
