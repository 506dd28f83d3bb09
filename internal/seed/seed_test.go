package seed

import (
	"context"
	"fmt"
	"testing"

	"crewz/internal/models"
	"crewz/internal/repository"
	"crewz/internal/service"
	"crewz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	rows, err := LoadCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	seen := map[string]bool{}
	var bmw int
	for _, r := range rows {
		key := fmt.Sprintf("%s|%s|%d", r.Make, r.Model, r.Year)
		assert.False(t, seen[key], "duplicate catalog row %s %s %d", r.Make, r.Model, r.Year)
		seen[key] = true
		if r.Make == "BMW" {
			bmw++
		}
	}
	assert.Positive(t, bmw)
}

func TestParseCatalog_RejectsBadRows(t *testing.T) {
	_, err := ParseCatalog([]byte("vehicles:\n  - {make: BMW, model: M3, year: 2024, type: boat}\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("vehicles:\n  - {make: BMW, year: 2024, type: car}\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("vehicles: [unterminated"))
	assert.Error(t, err)
}

func TestCatalog_IsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewCatalogService(repository.NewCatalogRepository(db))
	ctx := context.Background()

	rows, err := LoadCatalog()
	require.NoError(t, err)

	added, err := Catalog(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, len(rows), added)

	added, err = Catalog(ctx, svc)
	require.NoError(t, err)
	assert.Zero(t, added)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(rows)), count)
}

func TestSeeder_DemoKeepsCountersConsistent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	sum, err := NewSeeder(db, 42).Demo(ctx, Options{NumUsers: 4, PostsPerUser: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 8, sum.Posts)
	assert.Equal(t, 4, sum.Messages)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		var likes, comments int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likes).Error)
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
		assert.Equal(t, int(likes), p.LikesCount)
		assert.Equal(t, int(comments), p.CommentsCount)
	}

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		assert.Equal(t, 2, u.PostsCount)
		assert.Equal(t, 1, u.VehiclesCount)
		assert.Equal(t, 1, u.FollowersCount)
		assert.Equal(t, 1, u.FollowingCount)
	}
}

func TestSeeder_DemoRequiresTwoUsers(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := NewSeeder(db, 1).Demo(context.Background(), Options{NumUsers: 1})
	assert.Error(t, err)
}
