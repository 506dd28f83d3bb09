package service

import (
	"context"
	"strings"
	"time"

	"crewz/internal/media"
	"crewz/internal/models"
	"crewz/internal/observability"
	"crewz/internal/repository"
	"crewz/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// PostService handles authored content (posts, stories, reels, live streams) and the social
// actions on it.
type PostService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	vehicles repository.VehicleRepository
	media    *media.Checker
	storyTTL time.Duration
	now      func() time.Time
}

// PostServiceDeps groups the collaborators of PostService.
type PostServiceDeps struct {
	Posts    repository.PostRepository
	Likes    repository.LikeRepository
	Comments repository.CommentRepository
	Users    repository.UserRepository
	Vehicles repository.VehicleRepository
	Media    *media.Checker
	StoryTTL time.Duration
}

// CreatePostInput describes new content. Type defaults to a regular post.
type CreatePostInput struct {
	UserID    string          `json:"-"`
	Type      models.PostType `json:"type"`
	VehicleID *string         `json:"vehicle_id"`
	Caption   string          `json:"caption" validate:"max=2200"`
	Media     []string        `json:"media"`
}

// CreateCommentInput is a reply on a post.
type CreateCommentInput struct {
	PostID  string `json:"-"`
	UserID  string `json:"-"`
	Content string `json:"content" validate:"required,max=1000"`
}

// LikeResult is the state after a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

func NewPostService(deps PostServiceDeps) *PostService {
	ttl := deps.StoryTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PostService{
		posts:    deps.Posts,
		likes:    deps.Likes,
		comments: deps.Comments,
		users:    deps.Users,
		vehicles: deps.Vehicles,
		media:    deps.Media,
		storyTTL: ttl,
		now:      utcNow,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Type == "" {
		in.Type = models.PostTypePost
	}
	if !in.Type.Valid() {
		return nil, models.NewValidationError("type must be one of: post story reel live")
	}
	in.Caption = strings.TrimSpace(in.Caption)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	switch in.Type {
	case models.PostTypeStory, models.PostTypeReel:
		if len(in.Media) == 0 {
			return nil, models.NewValidationError("media is required for " + string(in.Type))
		}
	case models.PostTypeLive:
		if in.Caption == "" {
			return nil, models.NewValidationError("caption is required for live")
		}
	default:
		if in.Caption == "" && len(in.Media) == 0 {
			return nil, models.NewValidationError("caption or media is required")
		}
	}
	if err := s.media.CheckAll(in.Media); err != nil {
		return nil, err
	}

	if in.VehicleID != nil && *in.VehicleID == "" {
		in.VehicleID = nil
	}
	if in.VehicleID != nil {
		v, err := s.vehicles.GetByID(ctx, *in.VehicleID)
		if err != nil {
			return nil, err
		}
		if v.UserID != in.UserID {
			return nil, models.NewNotFoundError("Vehicle", *in.VehicleID)
		}
	}

	now := s.now()
	post := &models.Post{
		UserID:    in.UserID,
		Type:      in.Type,
		VehicleID: in.VehicleID,
		Caption:   in.Caption,
		Media:     in.Media,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Type == models.PostTypeStory {
		expires := now.Add(s.storyTTL)
		post.ExpiresAt = &expires
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes an owned post together with its likes and comments.
func (s *PostService) DeletePost(ctx context.Context, postID, userID string) error {
	return s.posts.Delete(ctx, postID, userID)
}

// EndLive closes an active live stream. The stream stops appearing in listings immediately.
func (s *PostService) EndLive(ctx context.Context, postID, userID string) (*models.Post, error) {
	return s.posts.EndLive(ctx, postID, userID, s.now())
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (result *LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "post.toggle_like", attribute.String("post.id", postID))
	defer func() { observability.EndSpan(span, err) }()

	liked, count, err := s.likes.Toggle(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikeToggles.WithLabelValues(state).Inc()
	return &LikeResult{Liked: liked, LikesCount: count}, nil
}

func (s *PostService) AddComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: in.PostID, UserID: in.UserID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	authors, err := resolveAuthors(ctx, s.users, []string{in.UserID})
	if err != nil {
		return nil, err
	}
	return &models.CommentView{Comment: *comment, Author: authors[in.UserID]}, nil
}

// ListComments returns a post's comments oldest first with their authors resolved.
func (s *PostService) ListComments(ctx context.Context, postID string, limit, offset int) ([]models.CommentView, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	limit, offset = repository.Page(limit, offset)

	comments, err := s.comments.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	authors, err := resolveAuthors(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{Comment: c, Author: authors[c.UserID]})
	}
	return views, nil
}

func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, userID string) error {
	return s.comments.Delete(ctx, postID, commentID, userID)
}
