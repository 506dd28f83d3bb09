package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"crewz/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser inserts a user with fake profile data. Overrides run before the insert.
func CreateUser(t testing.TB, db *gorm.DB, overrides ...func(*models.User)) *models.User {
	t.Helper()

	handle := strings.ToLower(gofakeit.LetterN(10))
	u := &models.User{
		Username: handle,
		Email:    handle + "@example.com",
		Password: "not-a-real-hash",
		FullName: gofakeit.Name(),
		Bio:      gofakeit.Sentence(8),
	}
	for _, o := range overrides {
		o(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateVehicle inserts a vehicle owned by userID without touching counters.
func CreateVehicle(t testing.TB, db *gorm.DB, userID string, overrides ...func(*models.Vehicle)) *models.Vehicle {
	t.Helper()

	v := &models.Vehicle{
		UserID: userID,
		Make:   gofakeit.CarMaker(),
		Model:  gofakeit.CarModel(),
		Year:   gofakeit.Number(1990, time.Now().Year()),
		Type:   models.VehicleTypeCar,
		Color:  gofakeit.Color(),
	}
	for _, o := range overrides {
		o(v)
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

// CreatePost inserts a post by userID without touching counters.
func CreatePost(t testing.TB, db *gorm.DB, userID string, overrides ...func(*models.Post)) *models.Post {
	t.Helper()

	p := &models.Post{
		UserID:  userID,
		Type:    models.PostTypePost,
		Caption: gofakeit.Sentence(6),
		Media:   []string{fmt.Sprintf("https://cdn.example.com/%s.jpg", gofakeit.UUID())},
	}
	for _, o := range overrides {
		o(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// At pins CreatedAt, for tests that depend on ordering.
func At(ts time.Time) func(*models.Post) {
	return func(p *models.Post) { p.CreatedAt = ts }
}

// Reload re-reads dest by primary key.
func Reload(t testing.TB, db *gorm.DB, dest any, id string) {
	t.Helper()
	require.NoError(t, db.Where("id = ?", id).First(dest).Error)
}
