// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"crewz/internal/models"
	"crewz/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// notFoundOr converts gorm.ErrRecordNotFound into a NotFound AppError and anything else into an internal one.
func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return internal(err)
}

// internal wraps err as an internal AppError unless it already is an AppError.
func internal(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// lockPost share-locks a live post row for the rest of tx, so a concurrent delete of the post waits
// until rows that reference it are written.
func lockPost(tx *gorm.DB, postID string) error {
	var post models.Post
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Select("id").
		Where("id = ?", postID).
		Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post", postID)
	}
	return err
}

// increment adds delta to col on the rows matched by query.
func increment(tx *gorm.DB, model any, col string, delta int, query string, args ...any) error {
	return tx.Model(model).Where(query, args...).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error
}

// decrement lowers col by one on the rows matched by query, never below zero.
func decrement(tx *gorm.DB, model any, col string, query string, args ...any) error {
	res := tx.Model(model).Where(query, args...).Where(col+" > 0").
		UpdateColumn(col, gorm.Expr(col+" - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.CounterFloorHits.WithLabelValues(col).Inc()
	}
	return nil
}

// decrementBy lowers col by n, clamping at zero.
func decrementBy(tx *gorm.DB, model any, col string, n int, query string, args ...any) error {
	return tx.Model(model).Where(query, args...).
		UpdateColumn(col, gorm.Expr("CASE WHEN "+col+" > ? THEN "+col+" - ? ELSE 0 END", n, n)).Error
}

// likePattern escapes LIKE metacharacters in q and wraps it for a case-insensitive substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// Page sizes shared by every paginated listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page normalizes pagination: limits below one take the default, limits above the maximum are
// clamped, and negative offsets become zero.
func Page(limit, offset int) (int, int) {
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return limit, max(offset, 0)
}

// PageOrAll is Page for listings that return the whole set unless a page is asked for.
// A limit below one comes back as zero, meaning no limit.
func PageOrAll(limit, offset int) (int, int) {
	if limit < 1 {
		return 0, max(offset, 0)
	}
	return Page(limit, offset)
}
