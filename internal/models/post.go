package models

import (
	"time"

	"gorm.io/gorm"
)

// PostType discriminates the content variants stored in the posts table.
type PostType string

const (
	PostTypePost  PostType = "post"
	PostTypeStory PostType = "story"
	PostTypeReel  PostType = "reel"
	PostTypeLive  PostType = "live"
)

// Valid reports whether t is a known content type.
func (t PostType) Valid() bool {
	switch t {
	case PostTypePost, PostTypeStory, PostTypeReel, PostTypeLive:
		return true
	}
	return false
}

// Post is any piece of authored content. VehicleID is a weak reference: the vehicle may be
// deleted later and readers must treat a miss as "no vehicle".
type Post struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type          PostType   `gorm:"size:16;not null;default:post;index" json:"type"`
	VehicleID     *string    `gorm:"type:varchar(36);index" json:"vehicle_id"`
	Caption       string     `gorm:"type:text" json:"caption"`
	Media         []string   `gorm:"serializer:json;type:text" json:"media"`
	LikesCount    int        `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int        `gorm:"not null;default:0" json:"comments_count"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.Type == "" {
		p.Type = PostTypePost
	}
	if p.Media == nil {
		p.Media = []string{}
	}
	return nil
}

// Like is the existence of a (post, user) pair; the composite key allows at most one.
type Like struct {
	PostID    string    `gorm:"primaryKey;type:varchar(36)" json:"post_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36);index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reply on a post.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);not null;index" json:"post_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	Comment
	Author UserSummary `json:"author"`
}

// FeedItem is the denormalized read model produced by the feed composer.
type FeedItem struct {
	ID            string          `json:"id"`
	Type          PostType        `json:"type"`
	Author        UserSummary     `json:"author"`
	Vehicle       *VehicleSummary `json:"vehicle"`
	Caption       string          `json:"caption"`
	Media         []string        `json:"media"`
	LikesCount    int             `json:"likes_count"`
	CommentsCount int             `json:"comments_count"`
	Liked         bool            `json:"liked"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}
