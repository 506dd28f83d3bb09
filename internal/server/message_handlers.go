package server

import (
	"crewz/internal/middleware"
	"crewz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessage godoc
// @Summary Send a direct message
// @Description Creates the conversation with the receiver on first contact
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SendMessageInput true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/send [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req service.SendMessageInput
	if !parseBody(c, &req) {
		return nil
	}
	req.SenderID = middleware.UserID(c)

	msg, err := s.messageService.SendMessage(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetConversations godoc
// @Summary List conversations
// @Description Returns every conversation the caller is in unless limit is given
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (omit for all)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ConversationSummary
// @Router /messages/conversations [get]
func (s *Server) GetConversations(c *fiber.Ctx) error {
	convs, err := s.messageService.ListConversations(c.UserContext(), middleware.UserID(c),
		c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(convs)
}

// GetMessageHistory godoc
// @Summary Conversation history with a user
// @Description Marks the partner's messages to the caller as read, then returns the thread oldest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param partnerId path string true "Partner user ID"
// @Success 200 {array} models.Message
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{partnerId} [get]
func (s *Server) GetMessageHistory(c *fiber.Ctx) error {
	messages, err := s.messageService.History(c.UserContext(), middleware.UserID(c), c.Params("partnerId"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(messages)
}
