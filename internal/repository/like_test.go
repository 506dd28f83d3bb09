package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"crewz/internal/models"
	"crewz/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_ToggleIsIdempotentInPairs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID)

	liked, count, err := repo.Toggle(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = repo.Toggle(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestLikeRepository_ToggleUnknownPostHasNoSideEffects(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	fan := testutil.CreateUser(t, db)

	_, _, err := repo.Toggle(context.Background(), "missing", fan.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestLikeRepository_DecrementNeverGoesNegative(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID)
	// A like row whose increment was lost leaves the counter at zero.
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: author.ID}).Error)

	liked, count, err := repo.Toggle(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
}

func TestLikeRepository_ConcurrentTogglesMatchRowCount(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID)

	fans := make([]*models.User, 8)
	for i := range fans {
		fans[i] = testutil.CreateUser(t, db)
	}

	// Each fan toggles three times, ending liked.
	var wg sync.WaitGroup
	errs := make(chan error, len(fans)*3)
	for _, fan := range fans {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			for i := 0; i < 3; i++ {
				if _, _, err := repo.Toggle(ctx, post.ID, userID); err != nil {
					errs <- err
				}
			}
		}(fan.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var stored models.Post
	testutil.Reload(t, db, &stored, post.ID)
	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&rows).Error)

	assert.Equal(t, int64(len(fans)), rows)
	assert.Equal(t, int(rows), stored.LikesCount)
}

func TestLikeRepository_ConcurrentTogglesOnSameKey(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID)

	const toggles = 9
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts []int
	)
	errs := make(chan error, toggles)
	start := make(chan struct{})
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, count, err := repo.Toggle(ctx, post.ID, fan.ID)
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			counts = append(counts, count)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, c := range counts {
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 1)
	}

	var stored models.Post
	testutil.Reload(t, db, &stored, post.ID)
	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", post.ID, fan.ID).Count(&rows).Error)

	assert.LessOrEqual(t, rows, int64(1))
	assert.Equal(t, int(rows), stored.LikesCount)
}

func TestLikeRepository_ToggleLocksPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE id = $1 LIMIT $2 FOR SHARE`)).
		WithArgs("gone", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, _, err := repo.Toggle(context.Background(), "gone", "fan")
	assert.True(t, models.IsCode(err, models.CodeNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_LikedPostIDs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	a := testutil.CreatePost(t, db, author.ID)
	b := testutil.CreatePost(t, db, author.ID)

	_, _, err := repo.Toggle(ctx, a.ID, fan.ID)
	require.NoError(t, err)

	got, err := repo.LikedPostIDs(ctx, fan.ID, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, got[a.ID])
	assert.False(t, got[b.ID])

	empty, err := repo.LikedPostIDs(ctx, "", []string{a.ID})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
