package server

import (
	"crewz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCatalog godoc
// @Summary Browse the vehicle catalog
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param make query string false "Make (case-insensitive)"
// @Param model query string false "Model substring"
// @Param year query int false "Model year"
// @Param type query string false "car or motorcycle"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.CatalogVehicle
// @Failure 400 {object} models.ErrorResponse
// @Router /catalog/vehicles [get]
func (s *Server) GetCatalog(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	rows, err := s.catalogService.List(c.UserContext(), service.CatalogQuery{
		Make:   c.Query("make"),
		Model:  c.Query("model"),
		Year:   c.QueryInt("year", 0),
		Type:   c.Query("type"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(rows)
}
