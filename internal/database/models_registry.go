package database

import "crewz/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Follow{},
		&models.Vehicle{},
		&models.CatalogVehicle{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Conversation{},
		&models.Message{},
		&models.Event{},
		&models.EventAttendee{},
		&models.EventInvite{},
	}
}
