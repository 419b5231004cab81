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

type UserHandler struct {
	users     service.UserService
	favorites service.FavoriteService
}

func NewUserHandler(users service.UserService, favorites service.FavoriteService) *UserHandler {
	return &UserHandler{users: users, favorites: favorites}
}

func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetProfile)
	g.PUT("/users/me", h.UpdateProfile)
	g.DELETE("/users/me", h.DeleteAccount)
	g.PUT("/users/favorites", h.ToggleFavorite)
	g.GET("/users/favorites", h.ListFavorites)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.users.GetProfile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return apiError(http.StatusNotFound, dto.CodeNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entries := make([]models.ContactEntry, len(req.ContactEntries))
	for i, e := range req.ContactEntries {
		entries[i] = models.ContactEntry{Type: e.Type, Value: e.Value, Platform: e.Platform}
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), middleware.UserID(c), service.ProfileUpdate{
		Name:              req.Name,
		ContactEntries:    entries,
		AcceptedAgreement: req.AcceptedAgreement,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return apiError(http.StatusNotFound, dto.CodeNotFound, "user not found")
		}
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not update profile")
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) DeleteAccount(c echo.Context) error {
	if err := h.users.DeleteAccount(c.Request().Context(), middleware.UserID(c)); err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not delete account")
	}
	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) ToggleFavorite(c echo.Context) error {
	var req dto.ToggleFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, dto.CodeValidation, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	favorited, err := h.favorites.Toggle(c.Request().Context(), middleware.UserID(c), models.FavoriteType(req.Type), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			return apiError(http.StatusNotFound, dto.CodeNotFound, "item not found")
		}
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not toggle favorite")
	}
	return c.JSON(http.StatusOK, map[string]bool{"favorited": favorited})
}

func (h *UserHandler) ListFavorites(c echo.Context) error {
	offerings, requests, err := h.favorites.ListFor(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return apiError(http.StatusServiceUnavailable, dto.CodeUnavailable, "could not list favorites")
	}

	resp := dto.FavoritesResponse{
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
