package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crewz/internal/config"
	"crewz/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testConfig(flags string) *config.Config {
	return &config.Config{
		Port:          "0",
		Env:           "test",
		JWTSecret:     "handler-test-secret-that-is-long-enough",
		JWTTTL:        7 * 24 * time.Hour,
		JWTIssuer:     "crewz",
		FeatureFlags:  flags,
		MediaMaxBytes: 1 << 20,
		StoryTTL:      24 * time.Hour,
	}
}

func newTestApp(t *testing.T, flags string) *fiber.App {
	t.Helper()
	s := NewServer(testConfig(flags), testutil.NewDB(t), nil)
	return s.App()
}

// call sends a JSON request and returns the status and raw body.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(out)
}

// signup registers username and returns its token and id.
func signup(t *testing.T, app *fiber.App, username string) (string, string) {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username":  username,
		"email":     username + "@crewz.test",
		"password":  "torque1234",
		"full_name": "Driver " + username,
	})
	require.Equal(t, http.StatusCreated, status, body)
	return gjson.Get(body, "access_token").String(), gjson.Get(body, "user.id").String()
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, "")

	status, body := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", gjson.Get(body, "status").String())

	status, body = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", gjson.Get(body, "checks.database").String())
	assert.Equal(t, "disabled", gjson.Get(body, "checks.redis").String())
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t, "")
	token, userID := signup(t, app, "nightrunner")
	require.NotEmpty(t, token)

	status, body := call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, userID, gjson.Get(body, "id").String())
	assert.Equal(t, "nightrunner", gjson.Get(body, "username").String())
	assert.False(t, gjson.Get(body, "password").Exists())

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "NightRunner@crewz.test", "password": "torque1234",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bearer", gjson.Get(body, "token_type").String())

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "nightrunner@crewz.test", "password": "wrong12345",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", gjson.Get(body, "code").String())

	status, body = call(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "someoneelse", "email": "nightrunner@crewz.test", "password": "torque1234",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", gjson.Get(body, "code").String())
}

func TestProtectedRoutesRejectMissingOrBadTokens(t *testing.T) {
	app := newTestApp(t, "")

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, http.MethodGet, "/api/posts/feed", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "UNAUTHORIZED", gjson.Get(body, "code").String())
		})
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	app := newTestApp(t, "")
	token, _ := signup(t, app, "brokenjson")

	status, body := call(t, app, http.MethodPost, "/api/posts", token, "{")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", gjson.Get(body, "code").String())
}

func TestVehicleOwnershipIsReportedAsNotFound(t *testing.T) {
	app := newTestApp(t, "")
	owner, _ := signup(t, app, "garageowner")
	other, _ := signup(t, app, "passerby")

	status, body := call(t, app, http.MethodPost, "/api/vehicles", owner, fiber.Map{
		"make": "Nissan", "model": "Skyline GT-R", "year": 1999, "type": "car",
	})
	require.Equal(t, http.StatusCreated, status, body)
	vehicleID := gjson.Get(body, "id").String()

	status, _ = call(t, app, http.MethodPut, "/api/vehicles/"+vehicleID, other, fiber.Map{"color": "pink"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodDelete, "/api/vehicles/"+vehicleID, other, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = call(t, app, http.MethodPut, "/api/vehicles/"+vehicleID, owner, fiber.Map{"color": "bayside blue"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bayside blue", gjson.Get(body, "color").String())

	status, body = call(t, app, http.MethodGet, "/api/vehicles/my", owner, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "#").Int())
}

func TestFeedLikeAndCommentFlow(t *testing.T) {
	app := newTestApp(t, "")
	author, _ := signup(t, app, "trackday")
	fan, _ := signup(t, app, "spectator")

	status, body := call(t, app, http.MethodPost, "/api/vehicles", author, fiber.Map{
		"make": "Porsche", "model": "911 GT3", "year": 2022, "type": "car",
	})
	require.Equal(t, http.StatusCreated, status, body)
	vehicleID := gjson.Get(body, "id").String()

	status, body = call(t, app, http.MethodPost, "/api/posts", author, fiber.Map{
		"caption": "Fresh tires", "vehicle_id": vehicleID,
		"media": []string{"https://cdn.example.com/gt3.jpg"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	postID := gjson.Get(body, "id").String()

	status, body = call(t, app, http.MethodPost, "/api/posts/"+postID+"/like", fan, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.True(t, gjson.Get(body, "liked").Bool())
	assert.Equal(t, int64(1), gjson.Get(body, "likes_count").Int())

	status, body = call(t, app, http.MethodPost, "/api/posts/"+postID+"/comments", fan, fiber.Map{"content": "Clean build"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "spectator", gjson.Get(body, "author.username").String())

	status, body = call(t, app, http.MethodGet, "/api/posts/feed", fan, nil)
	require.Equal(t, http.StatusOK, status, body)
	item := gjson.Get(body, "0")
	assert.Equal(t, postID, item.Get("id").String())
	assert.Equal(t, "trackday", item.Get("author.username").String())
	assert.Equal(t, "Porsche", item.Get("vehicle.make").String())
	assert.True(t, item.Get("liked").Bool())
	assert.Equal(t, int64(1), item.Get("comments_count").Int())

	status, body = call(t, app, http.MethodGet, "/api/posts/feed", author, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.False(t, gjson.Get(body, "0.liked").Bool())

	status, _ = call(t, app, http.MethodDelete, "/api/posts/"+postID, fan, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodDelete, "/api/posts/"+postID, author, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestStoriesAreTypedPosts(t *testing.T) {
	app := newTestApp(t, "")
	token, _ := signup(t, app, "storyteller")

	status, body := call(t, app, http.MethodPost, "/api/stories", token, fiber.Map{"caption": "no media"})
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, body = call(t, app, http.MethodPost, "/api/stories", token, fiber.Map{
		"media": []string{"https://cdn.example.com/sunset.jpg"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "story", gjson.Get(body, "type").String())
	assert.True(t, gjson.Get(body, "expires_at").Exists())

	status, body = call(t, app, http.MethodGet, "/api/stories", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "#").Int())

	status, body = call(t, app, http.MethodGet, "/api/reels", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), gjson.Get(body, "#").Int())
}

func TestFeatureFlagsGateLiveAndSearch(t *testing.T) {
	off := newTestApp(t, "")
	token, _ := signup(t, off, "flagless")

	status, body := call(t, off, http.MethodGet, "/api/live", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", gjson.Get(body, "code").String())

	status, _ = call(t, off, http.MethodGet, "/api/search/users?q=flag", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	on := newTestApp(t, "live_streams=on,search=on")
	token, _ = signup(t, on, "flagged")

	status, body = call(t, on, http.MethodPost, "/api/live", token, fiber.Map{"caption": "Canyon run"})
	require.Equal(t, http.StatusCreated, status, body)
	liveID := gjson.Get(body, "id").String()

	status, body = call(t, on, http.MethodGet, "/api/live", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "#").Int())

	status, _ = call(t, on, http.MethodPost, "/api/live/"+liveID+"/end", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, on, http.MethodGet, "/api/live", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), gjson.Get(body, "#").Int())

	status, body = call(t, on, http.MethodGet, "/api/search/users?q=flag", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "flagged", gjson.Get(body, "0.username").String())

	status, body = call(t, on, http.MethodGet, "/api/feature-flags", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "evaluated.search").Bool())
}

func TestMessagingFlow(t *testing.T) {
	app := newTestApp(t, "")
	alice, aliceID := signup(t, app, "alicedrift")
	bob, bobID := signup(t, app, "bobboost")

	for _, text := range []string{"Meet at the lot?", "Bring the turbo"} {
		status, body := call(t, app, http.MethodPost, "/api/messages/send", alice, fiber.Map{
			"receiver_id": bobID, "content": text,
		})
		require.Equal(t, http.StatusCreated, status, body)
	}

	status, body := call(t, app, http.MethodGet, "/api/messages/conversations", bob, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(1), gjson.Get(body, "#").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "0.unread_count").Int())
	assert.Equal(t, "alicedrift", gjson.Get(body, "0.other_user.username").String())
	assert.Equal(t, "Bring the turbo", gjson.Get(body, "0.last_message").String())

	status, body = call(t, app, http.MethodGet, "/api/messages/"+aliceID, bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), gjson.Get(body, "#").Int())
	assert.Equal(t, "Meet at the lot?", gjson.Get(body, "0.content").String())

	status, body = call(t, app, http.MethodGet, "/api/messages/conversations", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), gjson.Get(body, "0.unread_count").Int())

	status, _ = call(t, app, http.MethodPost, "/api/messages/send", alice, fiber.Map{
		"receiver_id": aliceID, "content": "note to self",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPrivateEventVisibility(t *testing.T) {
	app := newTestApp(t, "")
	organizer, _ := signup(t, app, "meetboss")
	guest, guestID := signup(t, app, "invitedguest")
	stranger, _ := signup(t, app, "outsider")

	status, body := call(t, app, http.MethodPost, "/api/events", organizer, fiber.Map{
		"title":      "Midnight meet",
		"date":       time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"location":   "Daikoku PA",
		"is_private": true,
	})
	require.Equal(t, http.StatusCreated, status, body)
	eventID := gjson.Get(body, "id").String()
	assert.True(t, gjson.Get(body, "is_attending").Bool())

	status, _ = call(t, app, http.MethodGet, "/api/events/"+eventID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/events/"+eventID+"/invite", guest, fiber.Map{"user_ids": []string{guestID}})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = call(t, app, http.MethodPost, "/api/events/"+eventID+"/invite", organizer, fiber.Map{"user_ids": []string{guestID}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, int64(1), gjson.Get(body, "invited").Int())

	status, body = call(t, app, http.MethodPost, "/api/events/"+eventID+"/join", guest, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, int64(2), gjson.Get(body, "attendees_count").Int())

	status, body = call(t, app, http.MethodGet, "/api/events", stranger, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), gjson.Get(body, "#").Int())
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	app := newTestApp(t, "")

	status, body := call(t, app, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", gjson.Get(body, "code").String())
}
