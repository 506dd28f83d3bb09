package repository

import (
	"context"

	"crewz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository toggles likes and answers the per-caller liked state.
type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID string) (bool, int, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the (post, user) like and returns the new state with the post's likes_count.
// The composite primary key arbitrates concurrent toggles: only the caller whose delete removed
// a row decrements, and only the caller whose insert landed increments.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID string) (bool, int, error) {
	var (
		liked bool
		count int
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}

		del := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			liked = false
			if err := decrement(tx, &models.Post{}, "likes_count", "id = ?", postID); err != nil {
				return err
			}
		} else {
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Like{PostID: postID, UserID: userID})
			if ins.Error != nil {
				return ins.Error
			}
			liked = true
			if ins.RowsAffected > 0 {
				if err := increment(tx, &models.Post{}, "likes_count", 1, "id = ?", postID); err != nil {
					return err
				}
			}
		}

		var post models.Post
		if err := tx.Select("likes_count").Where("id = ?", postID).First(&post).Error; err != nil {
			return err
		}
		count = post.LikesCount
		return nil
	})
	if err != nil {
		return false, 0, internal(err)
	}
	return liked, count, nil
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}

	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
