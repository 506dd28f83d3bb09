package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, "crewz-test", 7*24*time.Hour)

	token, expires, err := issuer.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expires, time.Minute)

	sub, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, "crewz-test", 7*24*time.Hour)
	good, _, err := issuer.Issue("user-1")
	require.NoError(t, err)

	expired := NewTokenIssuer(testSecret, "crewz-test", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Issue("user-1")
	require.NoError(t, err)

	otherSecret, _, err := NewTokenIssuer("another-secret-that-is-long-enough", "crewz-test", time.Hour).Issue("user-1")
	require.NoError(t, err)

	otherIssuer, _, err := NewTokenIssuer(testSecret, "someone-else", time.Hour).Issue("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expiredToken},
		{"wrong secret", otherSecret},
		{"wrong issuer", otherIssuer},
		{"garbage", "not.a.token"},
		{"truncated", good[:len(good)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenIssuer_RequiresSecret(t *testing.T) {
	_, _, err := NewTokenIssuer("", "crewz-test", time.Hour).Issue("user-1")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = BearerToken("bearer   abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer")
	assert.False(t, ok)
	_, ok = BearerToken("abc")
	assert.False(t, ok)
}

func TestAuthRequired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, "crewz-test", 7*24*time.Hour)
	valid, _, err := issuer.Issue("user-42")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/protected", AuthRequired(issuer), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Token " + valid, http.StatusUnauthorized},
		{"Malformed Token", "Bearer invalid.token.string", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
