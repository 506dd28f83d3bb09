package server

import (
	"crewz/internal/middleware"
	"crewz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile godoc
// @Summary Public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} service.ProfileView
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Update full_name, bio and profile_image; omitted fields are left unchanged
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if !parseBody(c, &req) {
		return nil
	}
	req.UserID = middleware.UserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// ToggleFollow godoc
// @Summary Follow or unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} service.FollowResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	result, err := s.userService.ToggleFollow(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// SearchUsers godoc
// @Summary Search users
// @Description Case-insensitive substring match on username and full name
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.UserSummary
// @Router /search/users [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.userService.SearchUsers(c.UserContext(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(users)
}
