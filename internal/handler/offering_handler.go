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

type OfferingHandler struct {
	svc service.OfferingService
}

func NewOfferingHandler(svc service.OfferingService) *OfferingHandler {
	return &OfferingHandler{svc: svc}
}

func (h *OfferingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/offerings", h.Create)
	g.GET("/offerings", h.List)
	g.GET("/offerings/mine", h.ListMine)
	g.GET("/offerings/:id", h.Get)
	g.DELETE("/offerings/:id", h.Delete)
	g.POST("/offerings/:id/join-waitlist", h.JoinWaitlist)
	g.DELETE("/offerings/:id/waitlist", h.CancelWaitlist)
	g.POST("/offerings/:id/accept-user", h.AcceptUser)
	g.DELETE("/offerings/:id/accepted-users/:userId", h.RemoveAccepted)
}

func (h *OfferingHandler) Create(c echo.Context) error {
	var req dto.CreateOfferingRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.ArrivalAt.Before(time.Now()) {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "arrival_at must be in the future")
	}

	offering := &models.Offering{
		OwnerUserID: middleware.UserID(c),
		Name:        req.Name,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Address:     req.Address,
		ArrivalAt:   req.ArrivalAt,
		Notes:       req.Notes,
		VehicleID:   req.VehicleID,
		TotalSeats:  req.TotalSeats,
	}

	if err := h.svc.Create(c.Request().Context(), offering); err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleNotFound):
			return apiError(http.StatusBadRequest, dto.CodeValidation, "vehicle not found")
		case errors.Is(err, service.ErrSeatsExceedVehicle):
			return apiError(http.StatusBadRequest, dto.CodeValidation, "total seats exceed vehicle capacity")
		case errors.Is(err, service.ErrForbidden):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "vehicle belongs to another user")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not create offering")
		}
	}

	return c.JSON(http.StatusCreated, dto.ToOfferingResponse(offering, nil))
}

func (h *OfferingHandler) List(c echo.Context) error {
	filter, err := parseListingFilter(c)
	if err != nil {
		return err
	}

	offerings, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not list offerings")
	}

	resp := make([]dto.OfferingResponse, len(offerings))
	for i := range offerings {
		resp[i] = dto.ToOfferingResponse(&offerings[i], nil)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OfferingHandler) ListMine(c echo.Context) error {
	offerings, err := h.svc.ListByOwner(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not list offerings")
	}

	resp := make([]dto.OfferingResponse, len(offerings))
	for i := range offerings {
		resp[i] = dto.ToOfferingResponse(&offerings[i], nil)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OfferingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	offering, members, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apiError(http.StatusNotFound, dto.CodeNotFound, "offering not found")
	}
	return c.JSON(http.StatusOK, dto.ToOfferingResponse(offering, members))
}

func (h *OfferingHandler) JoinWaitlist(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.JoinWaitlistRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	member, err := h.svc.JoinWaitlist(c.Request().Context(), id, middleware.UserID(c), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferingNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "offering not found")
		case errors.Is(err, service.ErrSelfJoin):
			return apiError(http.StatusForbidden, dto.CodeSelfJoin, "owner cannot join their own offering")
		case errors.Is(err, service.ErrAlreadyListed):
			return apiError(http.StatusConflict, dto.CodeAlreadyListed, "already waitlisted or accepted")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not join waitlist")
		}
	}

	return c.JSON(http.StatusOK, dto.ToMemberResponse(member))
}

func (h *OfferingHandler) CancelWaitlist(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	err = h.svc.CancelWaitlistEntry(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferingNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "offering not found")
		case errors.Is(err, service.ErrNotInWaitlist):
			return apiError(http.StatusNotFound, dto.CodeNotInWaitlist, "not on the waiting list")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not cancel waitlist entry")
		}
	}
	return c.NoContent(http.StatusOK)
}

func (h *OfferingHandler) AcceptUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AcceptUserRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.svc.AcceptFromWaitlist(c.Request().Context(), id, middleware.UserID(c), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferingNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "offering not found")
		case errors.Is(err, service.ErrForbidden):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "only the owner may accept users")
		case errors.Is(err, service.ErrNoSeatsAvailable):
			return apiError(http.StatusConflict, dto.CodeNoSeatsAvailable, "no seats available")
		case errors.Is(err, service.ErrNotInWaitlist):
			return apiError(http.StatusNotFound, dto.CodeNotInWaitlist, "user is not on the waiting list")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not accept user")
		}
	}
	return c.NoContent(http.StatusOK)
}

func (h *OfferingHandler) RemoveAccepted(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	err = h.svc.RemoveAccepted(c.Request().Context(), id, middleware.UserID(c), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferingNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "offering not found")
		case errors.Is(err, service.ErrForbidden):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "not allowed to remove this user")
		case errors.Is(err, service.ErrNotAccepted):
			return apiError(http.StatusNotFound, dto.CodeNotAccepted, "user is not an accepted rider")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not remove user")
		}
	}
	return c.NoContent(http.StatusOK)
}

func (h *OfferingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	err = h.svc.Delete(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferingNotFound):
			return apiError(http.StatusNotFound, dto.CodeNotFound, "offering not found")
		case errors.Is(err, service.ErrForbidden):
			return apiError(http.StatusForbidden, dto.CodeForbidden, "only the owner may delete an offering")
		default:
			return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not delete offering")
		}
	}
	return c.NoContent(http.StatusOK)
}
