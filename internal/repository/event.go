package repository

import (
	"context"

	"crewz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository persists events, attendance and invitations. Every read is filtered by the
// caller's visibility: public events, events they organize and events they were invited to.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	List(ctx context.Context, callerID string, limit, offset int) ([]models.Event, error)
	GetVisible(ctx context.Context, eventID, callerID string) (*models.Event, error)
	Invite(ctx context.Context, eventID, organizerID string, userIDs []string) (int, error)
	Join(ctx context.Context, eventID, callerID string) (bool, error)
	Leave(ctx context.Context, eventID, callerID string) (bool, error)
	AttendingSet(ctx context.Context, callerID string, eventIDs []string) (map[string]bool, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func visibleTo(callerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"events.is_private = ? OR events.organizer_id = ? OR EXISTS (SELECT 1 FROM event_invites WHERE event_invites.event_id = events.id AND event_invites.user_id = ?)",
			false, callerID, callerID,
		)
	}
}

// Create stores the event with its organizer as the first attendee.
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	event.AttendeesCount = 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return tx.Create(&models.EventAttendee{EventID: event.ID, UserID: event.OrganizerID}).Error
	})
	if err != nil {
		return internal(err)
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, callerID string, limit, offset int) ([]models.Event, error) {
	limit, offset = Page(limit, offset)

	events := []models.Event{}
	if err := r.db.WithContext(ctx).
		Scopes(visibleTo(callerID)).
		Order("events.date ASC, events.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) GetVisible(ctx context.Context, eventID, callerID string) (*models.Event, error) {
	return r.getVisible(r.db.WithContext(ctx), eventID, callerID)
}

func (r *eventRepository) getVisible(db *gorm.DB, eventID, callerID string) (*models.Event, error) {
	var event models.Event
	if err := db.Scopes(visibleTo(callerID)).Where("events.id = ?", eventID).First(&event).Error; err != nil {
		return nil, notFoundOr(err, "Event", eventID)
	}
	return &event, nil
}

// Invite grants each user visibility of the organizer's event and returns how many invites were new.
// Unknown users abort the whole call.
func (r *eventRepository) Invite(ctx context.Context, eventID, organizerID string, userIDs []string) (int, error) {
	invited := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Event{}).Where("id = ? AND organizer_id = ?", eventID, organizerID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return models.NewNotFoundError("Event", eventID)
		}

		seen := map[string]bool{organizerID: true}
		for _, userID := range userIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true

			var exists int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return models.NewNotFoundError("User", userID)
			}

			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.EventInvite{EventID: eventID, UserID: userID, InvitedBy: organizerID})
			if res.Error != nil {
				return res.Error
			}
			invited += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, internal(err)
	}
	return invited, nil
}

// Join adds the caller to a visible event and reports whether they were newly added.
func (r *eventRepository) Join(ctx context.Context, eventID, callerID string) (bool, error) {
	joined := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.getVisible(tx, eventID, callerID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.EventAttendee{EventID: eventID, UserID: callerID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		joined = true
		return increment(tx, &models.Event{}, "attendees_count", 1, "id = ?", eventID)
	})
	if err != nil {
		return false, internal(err)
	}
	return joined, nil
}

// Leave removes the caller from a visible event and reports whether they had been attending.
func (r *eventRepository) Leave(ctx context.Context, eventID, callerID string) (bool, error) {
	left := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := r.getVisible(tx, eventID, callerID)
		if err != nil {
			return err
		}
		if event.OrganizerID == callerID {
			return models.NewValidationError("The organizer cannot leave their own event")
		}
		res := tx.Where("event_id = ? AND user_id = ?", eventID, callerID).Delete(&models.EventAttendee{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		left = true
		return decrement(tx, &models.Event{}, "attendees_count", "id = ?", eventID)
	})
	if err != nil {
		return false, internal(err)
	}
	return left, nil
}

func (r *eventRepository) AttendingSet(ctx context.Context, callerID string, eventIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.EventAttendee{}).
		Where("user_id = ? AND event_id IN ?", callerID, eventIDs).
		Pluck("event_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
