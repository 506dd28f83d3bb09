// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered member. The *_count fields are cached aggregates kept in step with the
// rows they count by the repository that writes those rows.
type User struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username       string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	FullName       string         `gorm:"size:100" json:"full_name"`
	Bio            string         `gorm:"type:text" json:"bio"`
	ProfileImage   string         `gorm:"type:text" json:"profile_image"`
	FollowersCount int            `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int            `gorm:"not null;default:0" json:"following_count"`
	PostsCount     int            `gorm:"not null;default:0" json:"posts_count"`
	VehiclesCount  int            `gorm:"not null;default:0" json:"vehicles_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns an id when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// Summary returns the public fields embedded in feed and conversation views.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.ProfileImage,
	}
}

// UserSummary is the denormalized author/participant snapshot used in read views.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// UnknownUser stands in for an author or participant that no longer resolves.
var UnknownUser = UserSummary{Username: "Unknown"}

// Follow records that FollowerID follows FolloweeID.
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:varchar(36)" json:"follower_id"`
	FolloweeID string    `gorm:"primaryKey;type:varchar(36);index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
