package models

import (
	"time"

	"gorm.io/gorm"
)

// Message types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Conversation is the single thread between an unordered pair of users. UserAID is always the
// lexically smaller id so PairKey is the same whichever side sends first.
type Conversation struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PairKey       string     `gorm:"size:80;not null;uniqueIndex" json:"-"`
	UserAID       string     `gorm:"type:varchar(36);not null;index" json:"user_a_id"`
	UserBID       string     `gorm:"type:varchar(36);not null;index" json:"user_b_id"`
	LastMessage   string     `gorm:"type:text" json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	UnreadA       int        `gorm:"not null;default:0" json:"-"`
	UnreadB       int        `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`
}

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// OrderedPair returns the two ids sorted so the first is the smaller.
func OrderedPair(x, y string) (string, string) {
	if y < x {
		return y, x
	}
	return x, y
}

// PairKey is the direction-agnostic lookup key of the conversation between x and y.
func PairKey(x, y string) string {
	a, b := OrderedPair(x, y)
	return a + ":" + b
}

// UnreadColumn names the counter column belonging to userID's side of the pair (x, y).
func UnreadColumn(userID, x, y string) string {
	a, _ := OrderedPair(x, y)
	if userID == a {
		return "unread_a"
	}
	return "unread_b"
}

// UnreadFor returns the unread counter of userID's side.
func (c *Conversation) UnreadFor(userID string) int {
	if userID == c.UserAID {
		return c.UnreadA
	}
	return c.UnreadB
}

// Other returns the id of the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	if userID == c.UserAID {
		return c.UserBID
	}
	return c.UserAID
}

// Message is one direct message. Only IsRead and ReadAt change after creation.
type Message struct {
	ID             string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConversationID string     `gorm:"type:varchar(36);not null;index" json:"conversation_id"`
	SenderID       string     `gorm:"type:varchar(36);not null;index" json:"sender_id"`
	ReceiverID     string     `gorm:"type:varchar(36);not null;index" json:"receiver_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Type           string     `gorm:"size:16;not null;default:text" json:"message_type"`
	IsRead         bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	if m.Type == "" {
		m.Type = MessageTypeText
	}
	return nil
}

// ConversationSummary is a conversation as seen by one participant.
type ConversationSummary struct {
	ID            string      `json:"id"`
	OtherUser     UserSummary `json:"other_user"`
	LastMessage   string      `json:"last_message"`
	LastMessageAt *time.Time  `json:"last_message_at"`
	UnreadCount   int         `json:"unread_count"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
