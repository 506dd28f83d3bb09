package repository

import (
	"context"
	"errors"
	"time"

	"crewz/internal/models"
	"crewz/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository stores direct messages and the per-pair conversation rows.
type MessageRepository interface {
	Send(ctx context.Context, msg *models.Message) (*models.Conversation, bool, error)
	History(ctx context.Context, callerID, partnerID string, readAt time.Time) ([]models.Message, error)
	ListConversations(ctx context.Context, userID string, limit, offset int) ([]models.Conversation, error)
	GetConversation(ctx context.Context, x, y string) (*models.Conversation, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Send stores msg and upserts the pair's conversation in one transaction. The insert path starts
// the receiver's side at one; the conflict path bumps only the receiver's side. It also reports
// whether the conversation was created by this call.
func (r *messageRepository) Send(ctx context.Context, msg *models.Message) (*models.Conversation, bool, error) {
	defer observability.TrackQuery("send", "messages")()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	now := msg.CreatedAt
	preview := previewOf(msg)
	a, b := models.OrderedPair(msg.SenderID, msg.ReceiverID)
	pairKey := models.PairKey(msg.SenderID, msg.ReceiverID)

	var (
		conv    models.Conversation
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv = models.Conversation{
			ID:            uuid.NewString(),
			PairKey:       pairKey,
			UserAID:       a,
			UserBID:       b,
			LastMessage:   preview,
			LastMessageAt: &now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if msg.ReceiverID == a {
			conv.UnreadA = 1
		} else {
			conv.UnreadB = 1
		}

		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(&conv)
		if ins.Error != nil {
			return ins.Error
		}
		created = ins.RowsAffected > 0

		if !created {
			col := models.UnreadColumn(msg.ReceiverID, msg.SenderID, msg.ReceiverID)
			if err := tx.Model(&models.Conversation{}).
				Where("pair_key = ?", pairKey).
				UpdateColumns(map[string]any{
					"last_message":    preview,
					"last_message_at": now,
					"updated_at":      now,
					col:               gorm.Expr(col + " + 1"),
				}).Error; err != nil {
				return err
			}
			conv = models.Conversation{}
			if err := tx.Where("pair_key = ?", pairKey).First(&conv).Error; err != nil {
				return err
			}
		}

		msg.ConversationID = conv.ID
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, false, internal(err)
	}
	return &conv, created, nil
}

// History marks the partner's unread messages to the caller as read, clears the caller's unread
// side and returns the whole thread oldest first.
func (r *messageRepository) History(ctx context.Context, callerID, partnerID string, readAt time.Time) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Where("pair_key = ?", models.PairKey(callerID, partnerID)).First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id = ? AND receiver_id = ? AND is_read = ?", conv.ID, partnerID, callerID, false).
			UpdateColumns(map[string]any{"is_read": true, "read_at": readAt}).Error; err != nil {
			return err
		}

		col := models.UnreadColumn(callerID, callerID, partnerID)
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).UpdateColumn(col, 0).Error; err != nil {
			return err
		}

		return tx.Where("conversation_id = ?", conv.ID).
			Order("created_at ASC, id ASC").
			Find(&messages).Error
	})
	if err != nil {
		return nil, internal(err)
	}
	return messages, nil
}

// ListConversations returns every conversation userID is part of, most recently active first.
// A positive limit pages the result.
func (r *messageRepository) ListConversations(ctx context.Context, userID string, limit, offset int) ([]models.Conversation, error) {
	limit, offset = PageOrAll(limit, offset)

	q := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	convs := []models.Conversation{}
	if err := q.Find(&convs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return convs, nil
}

func (r *messageRepository) GetConversation(ctx context.Context, x, y string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).Where("pair_key = ?", models.PairKey(x, y)).First(&conv).Error; err != nil {
		return nil, notFoundOr(err, "Conversation", models.PairKey(x, y))
	}
	return &conv, nil
}

const previewLimit = 100

func previewOf(msg *models.Message) string {
	if msg.Type == models.MessageTypeImage {
		return "[image]"
	}
	runes := []rune(msg.Content)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit])
	}
	return msg.Content
}
