package server

import (
	"crewz/internal/middleware"
	"crewz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateEvent godoc
// @Summary Create an event
// @Description The organizer attends automatically
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateEventInput true "Event"
// @Success 201 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Router /events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req service.CreateEventInput
	if !parseBody(c, &req) {
		return nil
	}
	req.OrganizerID = middleware.UserID(c)

	event, err := s.eventService.CreateEvent(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetEvents godoc
// @Summary List visible events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Event
// @Router /events [get]
func (s *Server) GetEvents(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	events, err := s.eventService.ListEvents(c.UserContext(), middleware.UserID(c), page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(events)
}

// GetEvent godoc
// @Summary Get a visible event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	event, err := s.eventService.GetEvent(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(event)
}

// InviteToEvent godoc
// @Summary Invite users to an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body service.InviteInput true "Users to invite"
// @Success 200 {object} map[string]int
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/invite [post]
func (s *Server) InviteToEvent(c *fiber.Ctx) error {
	var req service.InviteInput
	if !parseBody(c, &req) {
		return nil
	}
	req.EventID = c.Params("id")
	req.OrganizerID = middleware.UserID(c)

	invited, err := s.eventService.Invite(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"invited": invited})
}

// JoinEvent godoc
// @Summary Attend an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} service.AttendanceResult
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/join [post]
func (s *Server) JoinEvent(c *fiber.Ctx) error {
	result, err := s.eventService.Join(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// LeaveEvent godoc
// @Summary Stop attending an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} service.AttendanceResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/leave [post]
func (s *Server) LeaveEvent(c *fiber.Ctx) error {
	result, err := s.eventService.Leave(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}
