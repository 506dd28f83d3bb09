package server

import (
	"log/slog"

	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters. Limits below one take the default,
// limits above the maximum are clamped, negative offsets become zero.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > repository.MaxPageSize {
		limit = repository.MaxPageSize
	}

	return Pagination{Limit: limit, Offset: max(c.QueryInt("offset", 0), 0)}
}

// parseBody decodes the JSON body into dst. On failure it writes a 400 and returns false.
func parseBody(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// mapServiceError writes err with the status its code implies. Internal failures are logged with
// their cause.
func mapServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusForError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}
