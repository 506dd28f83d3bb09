package repository

import (
	"context"
	"time"

	"crewz/internal/cache"
	"crewz/internal/models"
	"crewz/internal/observability"

	"gorm.io/gorm"
)

// PostQuery selects a page of visible content.
type PostQuery struct {
	Limit  int
	Offset int
	Type   models.PostType
	UserID string
	Now    time.Time
}

// PostRepository persists all content types. Creation and deletion keep User.posts_count in step.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]models.Post, error)
	Delete(ctx context.Context, id, ownerID string) error
	EndLive(ctx context.Context, id, ownerID string, at time.Time) (*models.Post, error)
	DeleteExpired(ctx context.Context, now time.Time, postType models.PostType, batch int) (int, error)
	Search(ctx context.Context, query string, now time.Time, limit, offset int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return increment(tx, &models.User{}, "posts_count", 1, "id = ?", post.UserID)
	})
	if err != nil {
		return internal(err)
	}
	cache.InvalidateUser(ctx, post.UserID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// List returns unexpired posts newest first, with id as the tie-break so pages are stable.
func (r *postRepository) List(ctx context.Context, q PostQuery) ([]models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	db := r.db.WithContext(ctx).Scopes(unexpired(q.Now))
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}

	posts := []models.Post{}
	if err := db.Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Delete removes the owner's post together with its likes and comments.
func (r *postRepository) Delete(ctx context.Context, id, ownerID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return decrement(tx, &models.User{}, "posts_count", "id = ?", ownerID)
	})
	if err != nil {
		return internal(err)
	}
	cache.InvalidateUser(ctx, ownerID)
	return nil
}

// EndLive stamps expires_at on the owner's running live stream.
func (r *postRepository) EndLive(ctx context.Context, id, ownerID string, at time.Time) (*models.Post, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND user_id = ? AND type = ? AND expires_at IS NULL", id, ownerID, models.PostTypeLive).
		Update("expires_at", at)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Live stream", id)
	}
	return r.GetByID(ctx, id)
}

type expiredRow struct {
	ID     string
	UserID string
}

// DeleteExpired hard-deletes up to batch expired posts of postType with their likes and comments,
// and lowers each author's posts_count by the number removed. It returns how many posts went.
func (r *postRepository) DeleteExpired(ctx context.Context, now time.Time, postType models.PostType, batch int) (int, error) {
	defer observability.TrackQuery("sweep", "posts")()

	var swept []expiredRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Select("id", "user_id").
			Where("type = ? AND expires_at IS NOT NULL AND expires_at <= ?", postType, now).
			Order("expires_at ASC").
			Limit(batch).
			Find(&swept).Error; err != nil {
			return err
		}
		if len(swept) == 0 {
			return nil
		}

		ids := make([]string, 0, len(swept))
		perUser := map[string]int{}
		for _, row := range swept {
			ids = append(ids, row.ID)
			perUser[row.UserID]++
		}

		if err := tx.Where("post_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		for userID, n := range perUser {
			if err := decrementBy(tx, &models.User{}, "posts_count", n, "id = ?", userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, internal(err)
	}

	users := make([]string, 0, len(swept))
	for _, row := range swept {
		users = append(users, row.UserID)
	}
	cache.InvalidateUser(ctx, users...)
	return len(swept), nil
}

func (r *postRepository) Search(ctx context.Context, query string, now time.Time, limit, offset int) ([]models.Post, error) {
	limit, offset = Page(limit, offset)

	posts := []models.Post{}
	if err := r.db.WithContext(ctx).
		Scopes(unexpired(now)).
		Where(`LOWER(caption) LIKE ? ESCAPE '\'`, likePattern(query)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func unexpired(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at IS NULL OR expires_at > ?", now)
	}
}
