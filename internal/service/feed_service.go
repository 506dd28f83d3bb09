package service

import (
	"context"
	"strings"
	"time"

	"crewz/internal/models"
	"crewz/internal/observability"
	"crewz/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService composes denormalized feed items from posts, users, vehicles and likes.
// It never writes.
type FeedService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	vehicles repository.VehicleRepository
	likes    repository.LikeRepository
	now      func() time.Time
}

// FeedQuery selects a feed page. Type and AuthorID are optional filters.
type FeedQuery struct {
	CallerID string
	Type     models.PostType
	AuthorID string
	Limit    int
	Offset   int
}

func NewFeedService(posts repository.PostRepository, users repository.UserRepository,
	vehicles repository.VehicleRepository, likes repository.LikeRepository) *FeedService {
	return &FeedService{posts: posts, users: users, vehicles: vehicles, likes: likes, now: utcNow}
}

// GetFeed returns visible content newest first. Expired stories and ended live streams are excluded.
func (s *FeedService) GetFeed(ctx context.Context, q FeedQuery) (items []models.FeedItem, err error) {
	ctx, span := observability.StartSpan(ctx, "feed.get",
		attribute.String("feed.type", string(q.Type)),
		attribute.Int("feed.limit", q.Limit),
		attribute.Int("feed.offset", q.Offset),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCaller(ctx, s.users, q.CallerID); err != nil {
		return nil, err
	}
	if q.Type != "" && !q.Type.Valid() {
		return nil, models.NewValidationError("type must be one of: post story reel live")
	}
	limit, offset := repository.Page(q.Limit, q.Offset)

	posts, err := s.posts.List(ctx, repository.PostQuery{
		Limit:  limit,
		Offset: offset,
		Type:   q.Type,
		UserID: q.AuthorID,
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	return s.compose(ctx, q.CallerID, posts)
}

// SearchPosts returns visible posts whose caption contains query.
func (s *FeedService) SearchPosts(ctx context.Context, callerID, query string, limit, offset int) ([]models.FeedItem, error) {
	if err := requireCaller(ctx, s.users, callerID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, offset = repository.Page(limit, offset)

	posts, err := s.posts.Search(ctx, query, s.now(), limit, offset)
	if err != nil {
		return nil, err
	}
	return s.compose(ctx, callerID, posts)
}

func (s *FeedService) compose(ctx context.Context, callerID string, posts []models.Post) ([]models.FeedItem, error) {
	items := make([]models.FeedItem, 0, len(posts))
	if len(posts) == 0 {
		observability.FeedItemsServed.Observe(0)
		return items, nil
	}

	authorIDs := make([]string, 0, len(posts))
	vehicleIDs := make([]string, 0, len(posts))
	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
		postIDs = append(postIDs, p.ID)
		if p.VehicleID != nil {
			vehicleIDs = append(vehicleIDs, *p.VehicleID)
		}
	}

	authors, err := resolveAuthors(ctx, s.users, authorIDs)
	if err != nil {
		return nil, err
	}
	vehicles := map[string]*models.VehicleSummary{}
	if ids := uniq(vehicleIDs); len(ids) > 0 {
		if vehicles, err = s.vehicles.Summaries(ctx, ids); err != nil {
			return nil, err
		}
	}
	liked, err := s.likes.LikedPostIDs(ctx, callerID, postIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		item := models.FeedItem{
			ID:            p.ID,
			Type:          p.Type,
			Author:        authors[p.UserID],
			Caption:       p.Caption,
			Media:         p.Media,
			LikesCount:    p.LikesCount,
			CommentsCount: p.CommentsCount,
			Liked:         liked[p.ID],
			CreatedAt:     p.CreatedAt,
			ExpiresAt:     p.ExpiresAt,
		}
		if item.Media == nil {
			item.Media = []string{}
		}
		if p.VehicleID != nil {
			item.Vehicle = vehicles[*p.VehicleID]
		}
		items = append(items, item)
	}

	observability.FeedItemsServed.Observe(float64(len(items)))
	return items, nil
}
