package server

import (
	"crewz/internal/middleware"
	"crewz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateVehicle godoc
// @Summary Add a vehicle to the caller's garage
// @Tags vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateVehicleInput true "Vehicle"
// @Success 201 {object} models.Vehicle
// @Failure 400 {object} models.ErrorResponse
// @Router /vehicles [post]
func (s *Server) CreateVehicle(c *fiber.Ctx) error {
	var req service.CreateVehicleInput
	if !parseBody(c, &req) {
		return nil
	}
	req.UserID = middleware.UserID(c)

	vehicle, err := s.vehicleService.Create(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(vehicle)
}

// GetMyVehicles godoc
// @Summary List the caller's vehicles
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Vehicle
// @Router /vehicles/my [get]
func (s *Server) GetMyVehicles(c *fiber.Ctx) error {
	vehicles, err := s.vehicleService.ListByUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(vehicles)
}

// GetUserVehicles godoc
// @Summary List a user's vehicles
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {array} models.Vehicle
// @Router /vehicles/user/{userId} [get]
func (s *Server) GetUserVehicles(c *fiber.Ctx) error {
	vehicles, err := s.vehicleService.ListByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(vehicles)
}

// GetVehicle godoc
// @Summary Get a vehicle
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} models.Vehicle
// @Failure 404 {object} models.ErrorResponse
// @Router /vehicles/{id} [get]
func (s *Server) GetVehicle(c *fiber.Ctx) error {
	vehicle, err := s.vehicleService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(vehicle)
}

// UpdateVehicle godoc
// @Summary Update an owned vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Param request body service.UpdateVehicleInput true "Fields to change"
// @Success 200 {object} models.Vehicle
// @Failure 404 {object} models.ErrorResponse
// @Router /vehicles/{id} [put]
func (s *Server) UpdateVehicle(c *fiber.Ctx) error {
	var req service.UpdateVehicleInput
	if !parseBody(c, &req) {
		return nil
	}
	req.ID = c.Params("id")
	req.UserID = middleware.UserID(c)

	vehicle, err := s.vehicleService.Update(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(vehicle)
}

// DeleteVehicle godoc
// @Summary Delete an owned vehicle
// @Tags vehicles
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /vehicles/{id} [delete]
func (s *Server) DeleteVehicle(c *fiber.Ctx) error {
	if err := s.vehicleService.Delete(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type vehicleImageRequest struct {
	Image string `json:"image"`
}

// AddVehicleImage godoc
// @Summary Append an image to an owned vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Param request body vehicleImageRequest true "Image as base64, data URI or URL"
// @Success 200 {object} models.Vehicle
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /vehicles/{id}/images [post]
func (s *Server) AddVehicleImage(c *fiber.Ctx) error {
	var req vehicleImageRequest
	if !parseBody(c, &req) {
		return nil
	}

	vehicle, err := s.vehicleService.AddImage(c.UserContext(), c.Params("id"), middleware.UserID(c), req.Image)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(vehicle)
}
