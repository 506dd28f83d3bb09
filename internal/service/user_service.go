package service

import (
	"context"
	"strings"

	"crewz/internal/media"
	"crewz/internal/models"
	"crewz/internal/repository"
	"crewz/internal/validation"
)

// UserService manages profiles and the follow graph.
type UserService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	media   *media.Checker
}

// UpdateProfileInput carries the editable profile fields; nil leaves a field unchanged.
type UpdateProfileInput struct {
	UserID       string  `json:"-"`
	FullName     *string `json:"full_name" validate:"omitempty,max=100"`
	Bio          *string `json:"bio" validate:"omitempty,max=500"`
	ProfileImage *string `json:"profile_image"`
}

// ProfileView is a user's public profile as seen by the caller.
type ProfileView struct {
	*models.User
	IsFollowing bool `json:"is_following"`
}

// FollowResult is the outcome of a follow toggle.
type FollowResult struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followers_count"`
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository, checker *media.Checker) *UserService {
	return &UserService{users: users, follows: follows, media: checker}
}

func (s *UserService) GetProfile(ctx context.Context, callerID, userID string) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{User: user}
	if callerID != "" && callerID != userID {
		following, err := s.follows.IsFollowing(ctx, callerID, userID)
		if err != nil {
			return nil, err
		}
		view.IsFollowing = following
	}
	return view, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.FullName != nil {
		trimmed := strings.TrimSpace(*in.FullName)
		in.FullName = &trimmed
	}
	if in.FullName == nil && in.Bio == nil && in.ProfileImage == nil {
		return nil, models.NewValidationError("No profile fields to update")
	}
	if in.ProfileImage != nil && *in.ProfileImage != "" {
		if _, err := s.media.Check(*in.ProfileImage); err != nil {
			return nil, err
		}
	}

	return s.users.UpdateProfile(ctx, in.UserID, repository.ProfileChanges{
		FullName:     in.FullName,
		Bio:          in.Bio,
		ProfileImage: in.ProfileImage,
	})
}

// ToggleFollow follows targetID if the caller does not follow them yet, and unfollows otherwise.
func (s *UserService) ToggleFollow(ctx context.Context, callerID, targetID string) (*FollowResult, error) {
	if callerID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	following, err := s.follows.Toggle(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Following: following, FollowersCount: target.FollowersCount}, nil
}

// SearchUsers returns users whose username or full name contains query.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, offset = repository.Page(limit, offset)

	users, err := s.users.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}
