package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"crewz/internal/media"
	"crewz/internal/models"
	"crewz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, string) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateProfileFn func(context.Context, string, repository.ProfileChanges) (*models.User, error)
	summariesFn     func(context.Context, []string) (map[string]models.UserSummary, error)
	searchFn        func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Exists(ctx context.Context, id string) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id string, changes repository.ProfileChanges) (*models.User, error) {
	return s.updateProfileFn(ctx, id, changes)
}
func (s *userRepoStub) Summaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	return s.summariesFn(ctx, ids)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "user-" + id}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		existsFn:        func(_ context.Context, _ string) (bool, error) { return true, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = "new-user"
			return nil
		},
		updateProfileFn: func(_ context.Context, id string, _ repository.ProfileChanges) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		summariesFn: func(_ context.Context, _ []string) (map[string]models.UserSummary, error) {
			return map[string]models.UserSummary{}, nil
		},
		searchFn: func(_ context.Context, _ string, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, string) (*models.Post, error)
	listFn          func(context.Context, repository.PostQuery) ([]models.Post, error)
	deleteFn        func(context.Context, string, string) error
	endLiveFn       func(context.Context, string, string, time.Time) (*models.Post, error)
	deleteExpiredFn func(context.Context, time.Time, models.PostType, int) (int, error)
	searchFn        func(context.Context, string, time.Time, int, int) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, q repository.PostQuery) ([]models.Post, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) Delete(ctx context.Context, id, ownerID string) error {
	return s.deleteFn(ctx, id, ownerID)
}
func (s *postRepoStub) EndLive(ctx context.Context, id, ownerID string, at time.Time) (*models.Post, error) {
	return s.endLiveFn(ctx, id, ownerID, at)
}
func (s *postRepoStub) DeleteExpired(ctx context.Context, now time.Time, postType models.PostType, batch int) (int, error) {
	return s.deleteExpiredFn(ctx, now, postType, batch)
}
func (s *postRepoStub) Search(ctx context.Context, query string, now time.Time, limit, offset int) ([]models.Post, error) {
	return s.searchFn(ctx, query, now, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:    func(_ context.Context, _ repository.PostQuery) ([]models.Post, error) { return nil, nil },
		deleteFn:  func(_ context.Context, _, _ string) error { return nil },
		endLiveFn: func(_ context.Context, id, _ string, _ time.Time) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		deleteExpiredFn: func(_ context.Context, _ time.Time, _ models.PostType, _ int) (int, error) { return 0, nil },
		searchFn:        func(_ context.Context, _ string, _ time.Time, _, _ int) ([]models.Post, error) { return nil, nil },
	}
}

// vehicleRepoStub is a stub for repository.VehicleRepository.
type vehicleRepoStub struct {
	createFn      func(context.Context, *models.Vehicle) error
	getByIDFn     func(context.Context, string) (*models.Vehicle, error)
	listByUserFn  func(context.Context, string) ([]models.Vehicle, error)
	updateFn      func(context.Context, string, string, *models.Vehicle, []string) (*models.Vehicle, error)
	deleteFn      func(context.Context, string, string) error
	appendImageFn func(context.Context, string, string, string) (*models.Vehicle, error)
	summariesFn   func(context.Context, []string) (map[string]*models.VehicleSummary, error)
}

func (s *vehicleRepoStub) Create(ctx context.Context, v *models.Vehicle) error {
	return s.createFn(ctx, v)
}
func (s *vehicleRepoStub) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.getByIDFn(ctx, id)
}
func (s *vehicleRepoStub) ListByUser(ctx context.Context, userID string) ([]models.Vehicle, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *vehicleRepoStub) Update(ctx context.Context, id, ownerID string, patch *models.Vehicle, columns []string) (*models.Vehicle, error) {
	return s.updateFn(ctx, id, ownerID, patch, columns)
}
func (s *vehicleRepoStub) Delete(ctx context.Context, id, ownerID string) error {
	return s.deleteFn(ctx, id, ownerID)
}
func (s *vehicleRepoStub) AppendImage(ctx context.Context, id, ownerID, image string) (*models.Vehicle, error) {
	return s.appendImageFn(ctx, id, ownerID, image)
}
func (s *vehicleRepoStub) Summaries(ctx context.Context, ids []string) (map[string]*models.VehicleSummary, error) {
	return s.summariesFn(ctx, ids)
}

func noopVehicleRepo() *vehicleRepoStub {
	return &vehicleRepoStub{
		createFn:     func(_ context.Context, _ *models.Vehicle) error { return nil },
		getByIDFn:    func(_ context.Context, id string) (*models.Vehicle, error) { return &models.Vehicle{ID: id}, nil },
		listByUserFn: func(_ context.Context, _ string) ([]models.Vehicle, error) { return nil, nil },
		updateFn: func(_ context.Context, id, _ string, _ *models.Vehicle, _ []string) (*models.Vehicle, error) {
			return &models.Vehicle{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _, _ string) error { return nil },
		appendImageFn: func(_ context.Context, id, _, image string) (*models.Vehicle, error) {
			return &models.Vehicle{ID: id, Images: []string{image}}, nil
		},
		summariesFn: func(_ context.Context, _ []string) (map[string]*models.VehicleSummary, error) {
			return map[string]*models.VehicleSummary{}, nil
		},
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn       func(context.Context, string, string) (bool, int, error)
	likedPostIDsFn func(context.Context, string, []string) (map[string]bool, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, postID, userID string) (bool, int, error) {
	return s.toggleFn(ctx, postID, userID)
}
func (s *likeRepoStub) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return s.likedPostIDsFn(ctx, userID, postIDs)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		toggleFn: func(_ context.Context, _, _ string) (bool, int, error) { return true, 1, nil },
		likedPostIDsFn: func(_ context.Context, _ string, _ []string) (map[string]bool, error) {
			return map[string]bool{}, nil
		},
	}
}

func testChecker() *media.Checker {
	return media.NewChecker(media.Limits{MaxBytes: 1 << 20, MaxDimension: 4096, MaxItems: 10})
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
