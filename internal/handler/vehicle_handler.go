package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"rideboard/internal/dto"
	"rideboard/internal/middleware"
	"rideboard/internal/models"
	"rideboard/internal/service"
)

type VehicleHandler struct {
	svc service.VehicleService
}

func NewVehicleHandler(svc service.VehicleService) *VehicleHandler {
	return &VehicleHandler{svc: svc}
}

func (h *VehicleHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/vehicles", h.Create)
	g.GET("/vehicles/me", h.GetMine)
	g.PUT("/vehicles/:id", h.Update)
	g.DELETE("/vehicles/:id", h.Delete)
}

func (h *VehicleHandler) Create(c echo.Context) error {
	var req dto.VehicleRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	vehicle := &models.Vehicle{
		Color: req.Color,
		Make:  req.Make,
		Model: req.Model,
		Seats: req.Seats,
	}
	if err := h.svc.Create(c.Request().Context(), middleware.UserID(c), vehicle); err != nil {
		if errors.Is(err, service.ErrVehicleExists) {
			return apiError(http.StatusConflict, dto.CodeVehicleExists, "user already has a vehicle")
		}
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not create vehicle")
	}
	return c.JSON(http.StatusCreated, dto.ToVehicleResponse(vehicle))
}

func (h *VehicleHandler) GetMine(c echo.Context) error {
	vehicle, err := h.svc.GetMine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return apiError(http.StatusNotFound, dto.CodeNotFound, "no vehicle on file")
	}
	return c.JSON(http.StatusOK, dto.ToVehicleResponse(vehicle))
}

func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.VehicleRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	vehicle, err := h.svc.Update(c.Request().Context(), id, middleware.UserID(c), &models.Vehicle{
		Color: req.Color,
		Make:  req.Make,
		Model: req.Model,
		Seats: req.Seats,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "vehicle not found")
		case errors.Is(err, service.ErrForbidden):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "vehicle belongs to another user")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not update vehicle")
		}
	}
	return c.JSON(http.StatusOK, dto.ToVehicleResponse(vehicle))
}

func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	err = h.svc.Delete(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "vehicle not found")
		case errors.Is(err, service.ErrForbidden):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "vehicle belongs to another user")
		case errors.Is(err, service.ErrVehicleInUse):
			return apiError(http.StatusConflict, dto.CodeVehicleInUse, "vehicle is attached to a live offering")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not delete vehicle")
		}
	}
	return c.NoContent(http.StatusOK)
}
