package service

import (
	"context"
	"strings"
	"time"

	"crewz/internal/media"
	"crewz/internal/models"
	"crewz/internal/repository"
	"crewz/internal/validation"
)

// EventService manages meet-ups, their visibility and attendance.
type EventService struct {
	events repository.EventRepository
	media  *media.Checker
}

// CreateEventInput describes a new event. The organizer attends automatically.
type CreateEventInput struct {
	OrganizerID string    `json:"-"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required,max=255"`
	Image       string    `json:"image"`
	IsPrivate   bool      `json:"is_private"`
}

// InviteInput lists users to invite to an event.
type InviteInput struct {
	EventID     string   `json:"-"`
	OrganizerID string   `json:"-"`
	UserIDs     []string `json:"user_ids" validate:"required,min=1,max=100,dive,required"`
}

// AttendanceResult reports the caller's attendance after a join or leave.
type AttendanceResult struct {
	Attending      bool `json:"attending"`
	Changed        bool `json:"changed"`
	AttendeesCount int  `json:"attendees_count"`
}

func NewEventService(events repository.EventRepository, checker *media.Checker) *EventService {
	return &EventService{events: events, media: checker}
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Image != "" {
		if _, err := s.media.Check(in.Image); err != nil {
			return nil, err
		}
	}

	event := &models.Event{
		OrganizerID: in.OrganizerID,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date.UTC(),
		Location:    in.Location,
		Image:       in.Image,
		IsPrivate:   in.IsPrivate,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	event.IsAttending = true
	return event, nil
}

// ListEvents returns the events visible to the caller, soonest first, flagged with attendance.
func (s *EventService) ListEvents(ctx context.Context, callerID string, limit, offset int) ([]models.Event, error) {
	limit, offset = repository.Page(limit, offset)

	events, err := s.events.List(ctx, callerID, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(events))
	for i := range events {
		ids = append(ids, events[i].ID)
	}
	attending, err := s.events.AttendingSet(ctx, callerID, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].IsAttending = attending[events[i].ID]
	}
	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID, callerID string) (*models.Event, error) {
	event, err := s.events.GetVisible(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	attending, err := s.events.AttendingSet(ctx, callerID, []string{eventID})
	if err != nil {
		return nil, err
	}
	event.IsAttending = attending[eventID]
	return event, nil
}

// Invite grants the listed users visibility of the event and returns how many were newly invited.
func (s *EventService) Invite(ctx context.Context, in InviteInput) (int, error) {
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	return s.events.Invite(ctx, in.EventID, in.OrganizerID, in.UserIDs)
}

func (s *EventService) Join(ctx context.Context, eventID, callerID string) (*AttendanceResult, error) {
	joined, err := s.events.Join(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	return s.attendance(ctx, eventID, callerID, true, joined)
}

func (s *EventService) Leave(ctx context.Context, eventID, callerID string) (*AttendanceResult, error) {
	left, err := s.events.Leave(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	return s.attendance(ctx, eventID, callerID, false, left)
}

func (s *EventService) attendance(ctx context.Context, eventID, callerID string, attending, changed bool) (*AttendanceResult, error) {
	event, err := s.events.GetVisible(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	return &AttendanceResult{Attending: attending, Changed: changed, AttendeesCount: event.AttendeesCount}, nil
}
