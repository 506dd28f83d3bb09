package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"crewz/internal/media"
	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/observability"
	"crewz/internal/repository"
	"crewz/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// MaxMessageLength bounds message content in characters.
const MaxMessageLength = 5000

// MessageService delivers direct messages and maintains per-side unread counters.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	media    *media.Checker
	now      func() time.Time
}

// SendMessageInput is a direct message from SenderID to ReceiverID.
type SendMessageInput struct {
	SenderID   string `json:"-"`
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Type       string `json:"message_type" validate:"omitempty,oneof=text image"`
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, checker *media.Checker) *MessageService {
	return &MessageService{messages: messages, users: users, media: checker, now: utcNow}
}

func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (msg *models.Message, err error) {
	ctx, span := observability.StartSpan(ctx, "message.send")
	defer func() { observability.EndSpan(span, err) }()

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}
	if in.SenderID == in.ReceiverID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	if in.Type == "" {
		in.Type = models.MessageTypeText
	}
	// Image content is a media reference bounded by the media limits instead of the text length.
	if in.Type == models.MessageTypeImage {
		if _, err := s.media.Check(in.Content); err != nil {
			return nil, err
		}
	} else if len([]rune(in.Content)) > MaxMessageLength {
		return nil, models.NewValidationError("content must not exceed " + strconv.Itoa(MaxMessageLength) + " characters")
	}

	ok, err := s.users.Exists(ctx, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("User", in.ReceiverID)
	}

	msg = &models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
		Type:       in.Type,
		CreatedAt:  s.now(),
	}
	conv, created, err := s.messages.Send(ctx, msg)
	if err != nil {
		return nil, err
	}

	label := "existing"
	if created {
		label = "new"
		middleware.Logger.InfoContext(ctx, "conversation started", slog.String("conversation_id", conv.ID))
	}
	observability.MessagesSent.WithLabelValues(label).Inc()
	span.SetAttributes(attribute.String("conversation.id", conv.ID), attribute.Bool("conversation.created", created))
	return msg, nil
}

// History marks the partner's unread messages to the caller as read, then returns the whole
// thread oldest first.
func (s *MessageService) History(ctx context.Context, callerID, partnerID string) ([]models.Message, error) {
	ok, err := s.users.Exists(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("User", partnerID)
	}
	return s.messages.History(ctx, callerID, partnerID, s.now())
}

// ListConversations returns every conversation the caller is in, most recently active first.
// A positive limit pages the result.
func (s *MessageService) ListConversations(ctx context.Context, callerID string, limit, offset int) ([]models.ConversationSummary, error) {
	convs, err := s.messages.ListConversations(ctx, callerID, limit, offset)
	if err != nil {
		return nil, err
	}

	others := make([]string, 0, len(convs))
	for i := range convs {
		others = append(others, convs[i].Other(callerID))
	}
	people, err := resolveAuthors(ctx, s.users, others)
	if err != nil {
		return nil, err
	}

	out := make([]models.ConversationSummary, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		out = append(out, models.ConversationSummary{
			ID:            c.ID,
			OtherUser:     people[c.Other(callerID)],
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   c.UnreadFor(callerID),
			UpdatedAt:     c.UpdatedAt,
		})
	}
	return out, nil
}
