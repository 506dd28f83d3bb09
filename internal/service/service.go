// Package service provides application business logic (feed, likes, messaging, events, garage).
package service

import (
	"context"
	"time"

	"crewz/internal/models"
	"crewz/internal/repository"
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// resolveAuthors batch-loads user summaries, substituting models.UnknownUser for ids that do not resolve.
func resolveAuthors(ctx context.Context, users repository.UserRepository, ids []string) (map[string]models.UserSummary, error) {
	found, err := users.Summaries(ctx, uniq(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.UserSummary, len(ids))
	for _, id := range ids {
		if s, ok := found[id]; ok {
			out[id] = s
		} else {
			out[id] = models.UnknownUser
		}
	}
	return out, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// requireCaller fails with Unauthorized unless callerID names an active user.
func requireCaller(ctx context.Context, users repository.UserRepository, callerID string) error {
	if callerID == "" {
		return models.NewUnauthorizedError("Authentication required")
	}
	ok, err := users.Exists(ctx, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}
