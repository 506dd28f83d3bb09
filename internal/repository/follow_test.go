package repository

import (
	"context"
	"testing"

	"crewz/internal/models"
	"crewz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Toggle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)

	following, err := repo.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	var a, b models.User
	testutil.Reload(t, db, &a, alice.ID)
	testutil.Reload(t, db, &b, bob.ID)
	assert.Equal(t, 1, a.FollowingCount)
	assert.Equal(t, 1, b.FollowersCount)

	is, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, is)

	following, err = repo.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	testutil.Reload(t, db, &a, alice.ID)
	testutil.Reload(t, db, &b, bob.ID)
	assert.Equal(t, 0, a.FollowingCount)
	assert.Equal(t, 0, b.FollowersCount)
}

func TestFollowRepository_ToggleUnknownUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	alice := testutil.CreateUser(t, db)

	_, err := repo.Toggle(context.Background(), alice.ID, "ghost")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&n).Error)
	assert.Zero(t, n)
}
