package repository

import (
	"context"

	"crewz/internal/cache"
	"crewz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the follow graph and the two counters each edge feeds.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle removes the edge if present, otherwise creates it, and reports whether the follower now follows.
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	var following bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", followeeID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return models.NewNotFoundError("User", followeeID)
		}

		del := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			following = false
			if err := decrement(tx, &models.User{}, "followers_count", "id = ?", followeeID); err != nil {
				return err
			}
			return decrement(tx, &models.User{}, "following_count", "id = ?", followerID)
		}

		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID})
		if ins.Error != nil {
			return ins.Error
		}
		following = true
		if ins.RowsAffected == 0 {
			return nil
		}
		if err := increment(tx, &models.User{}, "followers_count", 1, "id = ?", followeeID); err != nil {
			return err
		}
		return increment(tx, &models.User{}, "following_count", 1, "id = ?", followerID)
	})
	if err != nil {
		return false, internal(err)
	}

	cache.InvalidateUser(ctx, followerID, followeeID)
	return following, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}
