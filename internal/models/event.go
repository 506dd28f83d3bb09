package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a meet-up. Private events are visible only to the organizer and invitees.
type Event struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrganizerID    string    `gorm:"type:varchar(36);not null;index" json:"organizer_id"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	Location       string    `gorm:"size:255;not null" json:"location"`
	Image          string    `gorm:"type:text" json:"image"`
	IsPrivate      bool      `gorm:"not null;default:false;index" json:"is_private"`
	AttendeesCount int       `gorm:"not null;default:0" json:"attendees_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	IsAttending bool `gorm:"-" json:"is_attending"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// VisibleTo applies the visibility rule for a caller given whether they are invited.
func (e *Event) VisibleTo(userID string, invited bool) bool {
	return !e.IsPrivate || e.OrganizerID == userID || invited
}

// EventAttendee marks a user as attending an event.
type EventAttendee struct {
	EventID  string    `gorm:"primaryKey;type:varchar(36)" json:"event_id"`
	UserID   string    `gorm:"primaryKey;type:varchar(36);index" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// EventInvite grants a user visibility of a private event.
type EventInvite struct {
	EventID   string    `gorm:"primaryKey;type:varchar(36)" json:"event_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36);index" json:"user_id"`
	InvitedBy string    `gorm:"type:varchar(36);not null" json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
}
