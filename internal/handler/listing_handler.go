package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rideboard/internal/dto"
	"rideboard/internal/service"
)

// ListingHandler serves the combined browse view the map screen feeds from.
type ListingHandler struct {
	offerings service.OfferingService
	requests  service.RequestService
}

func NewListingHandler(offerings service.OfferingService, requests service.RequestService) *ListingHandler {
	return &ListingHandler{offerings: offerings, requests: requests}
}

func (h *ListingHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/listings", h.List)
}

func (h *ListingHandler) List(c echo.Context) error {
	filter, err := parseListingFilter(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	offerings, err := h.offerings.List(ctx, filter)
	if err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not load listings")
	}
	requests, err := h.requests.List(ctx, filter)
	if err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not load listings")
	}

	resp := dto.ListingsResponse{
		Offerings: make([]dto.OfferingResponse, len(offerings)),
		Requests:  make([]dto.RequestResponse, len(requests)),
	}
	for i := range offerings {
		resp.Offerings[i] = dto.ToOfferingResponse(&offerings[i], nil)
	}
	for i := range requests {
		resp.Requests[i] = dto.ToRequestResponse(&requests[i])
	}
	return c.JSON(http.StatusOK, resp)
}
