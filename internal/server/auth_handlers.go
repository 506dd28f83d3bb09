package server

import (
	"crewz/internal/middleware"
	"crewz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register godoc
// @Summary Register a new user
// @Description Create a new user account and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration data"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if !parseBody(c, &req) {
		return nil
	}

	result, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login godoc
// @Summary Login user
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if !parseBody(c, &req) {
		return nil
	}

	result, err := s.authService.Login(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.authService.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}
