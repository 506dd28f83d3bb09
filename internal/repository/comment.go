package repository

import (
	"context"

	"crewz/internal/models"

	"gorm.io/gorm"
)

// CommentRepository persists comments and keeps Post.comments_count in step.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]models.Comment, error)
	Delete(ctx context.Context, postID, commentID, userID string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, comment.PostID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return increment(tx, &models.Post{}, "comments_count", 1, "id = ?", comment.PostID)
	})
	if err != nil {
		return internal(err)
	}
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]models.Comment, error) {
	limit, offset = Page(limit, offset)

	comments := []models.Comment{}
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// Delete removes a comment written by userID.
func (r *commentRepository) Delete(ctx context.Context, postID, commentID, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND post_id = ? AND user_id = ?", commentID, postID, userID).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", commentID)
		}
		return decrement(tx, &models.Post{}, "comments_count", "id = ?", postID)
	})
	if err != nil {
		return internal(err)
	}
	return nil
}
