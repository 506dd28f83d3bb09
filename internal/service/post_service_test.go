package service

import (
	"context"
	"testing"
	"time"

	"crewz/internal/models"
	"crewz/internal/observability"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostService(posts *postRepoStub, vehicles *vehicleRepoStub) *PostService {
	return NewPostService(PostServiceDeps{
		Posts:    posts,
		Likes:    noopLikeRepo(),
		Users:    noopUserRepo(),
		Vehicles: vehicles,
		Media:    testChecker(),
		StoryTTL: 24 * time.Hour,
	})
}

func TestPostService_CreateStorySetsExpiry(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	var created *models.Post
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}
	svc := newTestPostService(posts, noopVehicleRepo())
	svc.now = fixedClock(now)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: "u1",
		Type:   models.PostTypeStory,
		Media:  []string{"https://cdn.example.com/s.jpg"},
	})
	require.NoError(t, err)
	require.Same(t, created, post)
	require.NotNil(t, post.ExpiresAt)
	assert.Equal(t, now.Add(24*time.Hour), *post.ExpiresAt)
	assert.Equal(t, now, post.CreatedAt)
}

func TestPostService_CreateDefaultsToPostWithoutExpiry(t *testing.T) {
	svc := newTestPostService(noopPostRepo(), noopVehicleRepo())

	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Caption: "  sunday drive "})
	require.NoError(t, err)
	assert.Equal(t, models.PostTypePost, post.Type)
	assert.Equal(t, "sunday drive", post.Caption)
	assert.Nil(t, post.ExpiresAt)
}

func TestPostService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"unknown type", CreatePostInput{UserID: "u1", Type: "tweet", Caption: "x"}},
		{"empty post", CreatePostInput{UserID: "u1"}},
		{"story without media", CreatePostInput{UserID: "u1", Type: models.PostTypeStory, Caption: "x"}},
		{"reel without media", CreatePostInput{UserID: "u1", Type: models.PostTypeReel}},
		{"live without title", CreatePostInput{UserID: "u1", Type: models.PostTypeLive}},
		{"undecodable image", CreatePostInput{UserID: "u1", Media: []string{"data:image/png;base64,AAAA"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := noopPostRepo()
			posts.createFn = func(context.Context, *models.Post) error {
				t.Fatal("create must not be called")
				return nil
			}
			svc := newTestPostService(posts, noopVehicleRepo())

			_, err := svc.CreatePost(context.Background(), tt.in)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestPostService_CreateRequiresOwnVehicle(t *testing.T) {
	vehicles := noopVehicleRepo()
	vehicles.getByIDFn = func(_ context.Context, id string) (*models.Vehicle, error) {
		return &models.Vehicle{ID: id, UserID: "someone-else"}, nil
	}
	posts := noopPostRepo()
	posts.createFn = func(context.Context, *models.Post) error {
		t.Fatal("create must not be called")
		return nil
	}
	svc := newTestPostService(posts, vehicles)

	vid := "v1"
	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Caption: "mine?", VehicleID: &vid})
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_ToggleLikeRecordsMetric(t *testing.T) {
	svc := newTestPostService(noopPostRepo(), noopVehicleRepo())
	liked := observability.LikeToggles.WithLabelValues("liked")
	before := promtest.ToFloat64(liked)

	res, err := svc.ToggleLike(context.Background(), "p1", "u1")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikesCount)
	assert.Equal(t, before+1, promtest.ToFloat64(liked))
}

func TestPostService_ListCommentsOfMissingPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := newTestPostService(posts, noopVehicleRepo())

	_, err := svc.ListComments(context.Background(), "missing", 10, 0)
	assertCode(t, err, models.CodeNotFound)
}
