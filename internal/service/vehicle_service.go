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

// VehicleService manages users' garages.
type VehicleService struct {
	vehicles repository.VehicleRepository
	media    *media.Checker
	now      func() time.Time
}

// CreateVehicleInput describes a new garage entry.
type CreateVehicleInput struct {
	UserID        string   `json:"-"`
	Make          string   `json:"make" validate:"required,max=64"`
	Model         string   `json:"model" validate:"required,max=64"`
	Year          int      `json:"year" validate:"required"`
	Type          string   `json:"type" validate:"required,oneof=car motorcycle"`
	Color         string   `json:"color" validate:"max=32"`
	Description   string   `json:"description" validate:"max=2000"`
	Modifications string   `json:"modifications" validate:"max=5000"`
	Images        []string `json:"images"`
}

// UpdateVehicleInput changes the non-nil fields of an owned vehicle.
type UpdateVehicleInput struct {
	ID            string  `json:"-"`
	UserID        string  `json:"-"`
	Make          *string `json:"make" validate:"omitempty,min=1,max=64"`
	Model         *string `json:"model" validate:"omitempty,min=1,max=64"`
	Year          *int    `json:"year"`
	Type          *string `json:"type" validate:"omitempty,oneof=car motorcycle"`
	Color         *string `json:"color" validate:"omitempty,max=32"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	Modifications *string `json:"modifications" validate:"omitempty,max=5000"`
}

func NewVehicleService(vehicles repository.VehicleRepository, checker *media.Checker) *VehicleService {
	return &VehicleService{vehicles: vehicles, media: checker, now: utcNow}
}

func (s *VehicleService) Create(ctx context.Context, in CreateVehicleInput) (*models.Vehicle, error) {
	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := validation.ValidateVehicleYear(in.Year, s.now()); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.media.CheckAll(in.Images); err != nil {
		return nil, err
	}

	v := &models.Vehicle{
		UserID:        in.UserID,
		Make:          in.Make,
		Model:         in.Model,
		Year:          in.Year,
		Type:          in.Type,
		Color:         in.Color,
		Description:   in.Description,
		Modifications: in.Modifications,
		Images:        in.Images,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

func (s *VehicleService) ListByUser(ctx context.Context, userID string) ([]models.Vehicle, error) {
	return s.vehicles.ListByUser(ctx, userID)
}

// Update applies the supplied fields. A vehicle the caller does not own is reported as not found.
func (s *VehicleService) Update(ctx context.Context, in UpdateVehicleInput) (*models.Vehicle, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	patch := &models.Vehicle{}
	var columns []string
	if in.Make != nil {
		patch.Make = strings.TrimSpace(*in.Make)
		if patch.Make == "" {
			return nil, models.NewValidationError("make is required")
		}
		columns = append(columns, "make")
	}
	if in.Model != nil {
		patch.Model = strings.TrimSpace(*in.Model)
		if patch.Model == "" {
			return nil, models.NewValidationError("model is required")
		}
		columns = append(columns, "model")
	}
	if in.Year != nil {
		if err := validation.ValidateVehicleYear(*in.Year, s.now()); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		patch.Year = *in.Year
		columns = append(columns, "year")
	}
	if in.Type != nil {
		patch.Type = *in.Type
		columns = append(columns, "type")
	}
	if in.Color != nil {
		patch.Color = *in.Color
		columns = append(columns, "color")
	}
	if in.Description != nil {
		patch.Description = *in.Description
		columns = append(columns, "description")
	}
	if in.Modifications != nil {
		patch.Modifications = *in.Modifications
		columns = append(columns, "modifications")
	}

	return s.vehicles.Update(ctx, in.ID, in.UserID, patch, columns)
}

func (s *VehicleService) Delete(ctx context.Context, id, userID string) error {
	return s.vehicles.Delete(ctx, id, userID)
}

// AddImage appends one checked media reference to an owned vehicle.
func (s *VehicleService) AddImage(ctx context.Context, id, userID, image string) (*models.Vehicle, error) {
	if _, err := s.media.Check(image); err != nil {
		return nil, err
	}
	return s.vehicles.AppendImage(ctx, id, userID, strings.TrimSpace(image))
}
