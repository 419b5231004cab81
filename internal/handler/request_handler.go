package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"rideboard/internal/dto"
	"rideboard/internal/middleware"
	"rideboard/internal/models"
	"rideboard/internal/service"
)

type RequestHandler struct {
	svc service.RequestService
}

func NewRequestHandler(svc service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/requests", h.Create)
	g.GET("/requests", h.List)
	g.GET("/requests/:id", h.Get)
	g.DELETE("/requests/:id", h.Delete)
	g.PUT("/requests/:id/accept", h.Accept)
	g.PUT("/requests/:id/unaccept", h.Unaccept)
}

func (h *RequestHandler) Create(c echo.Context) error {
	var req dto.CreateRideRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.ArrivalAt.Before(time.Now()) {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "arrival_at must be in the future")
	}

	request := &models.Request{
		RequesterUserID: middleware.UserID(c),
		Name:            req.Name,
		Lat:             req.Lat,
		Lng:             req.Lng,
		Address:         req.Address,
		ArrivalAt:       req.ArrivalAt,
		Notes:           req.Notes,
		Wants:           req.Wants,
	}

	if err := h.svc.Create(c.Request().Context(), request); err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not create request")
	}
	return c.JSON(http.StatusCreated, dto.ToRequestResponse(request))
}

func (h *RequestHandler) List(c echo.Context) error {
	filter, err := parseListingFilter(c)
	if err != nil {
		return err
	}

	requests, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not list requests")
	}

	resp := make([]dto.RequestResponse, len(requests))
	for i := range requests {
		resp[i] = dto.ToRequestResponse(&requests[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	request, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apiError(http.StatusNotFound, dto.CodeNotFound, "request not found")
	}
	return c.JSON(http.StatusOK, dto.ToRequestResponse(request))
}

func (h *RequestHandler) Accept(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	err = h.svc.Accept(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "request not found")
		case errors.Is(err, service.ErrSelfAccept):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "cannot accept your own request")
		case errors.Is(err, service.ErrAlreadyAccepted):
			return apiError(http.StatusConflict, dto.CodeAlreadyAccepted, "request is already accepted")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not accept request")
		}
	}
	return c.NoContent(http.StatusOK)
}

func (h *RequestHandler) Unaccept(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	err = h.svc.Unaccept(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "request not found")
		case errors.Is(err, service.ErrNotAcceptedByYou):
			return apiError(http.StatusForbidden, dto.CodeNotAcceptedByYou, "request is not accepted by you")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not unaccept request")
		}
	}
	return c.NoContent(http.StatusOK)
}

func (h *RequestHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	err = h.svc.Delete(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "request not found")
		case errors.Is(err, service.ErrForbidden):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "only the requester may delete a request")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not delete request")
		}
	}
	return c.NoContent(http.StatusOK)
}
