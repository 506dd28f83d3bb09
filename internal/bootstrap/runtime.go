// Package bootstrap establishes the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"crewz/internal/cache"
	"crewz/internal/config"
	"crewz/internal/database"
	"crewz/internal/repository"
	"crewz/internal/seed"
	"crewz/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedCatalog bool
}

// InitRuntime connects to the database and Redis and optionally seeds the vehicle catalog.
// The Redis client is nil when Redis is not configured or unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if opts.SeedCatalog {
		catalog := service.NewCatalogService(repository.NewCatalogRepository(db))
		if _, err := seed.Catalog(ctx, catalog); err != nil {
			return nil, nil, fmt.Errorf("failed to seed vehicle catalog: %w", err)
		}
	}

	return db, r, nil
}
