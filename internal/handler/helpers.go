package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"rideboard/internal/dto"
	"rideboard/internal/repository"
)

func apiError(status int, code, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, dto.ErrorResponse{Code: code, Message: message})
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apiError(http.StatusBadRequest, dto.CodeValidation, "invalid "+name)
	}
	return uint(id), nil
}

// parseListingFilter reads ?near=lat,lng&radius=km&after=&before= into a
// repository filter. Bad values are 400s, absent values disable the clause.
func parseListingFilter(c echo.Context) (repository.ListingFilter, error) {
	var filter repository.ListingFilter

	if near := c.QueryParam("near"); near != "" {
		parts := strings.SplitN(near, ",", 2)
		if len(parts) != 2 {
			return filter, apiError(http.StatusBadRequest, dto.CodeValidation, "near must be lat,lng")
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return filter, apiError(http.StatusBadRequest, dto.CodeValidation, "invalid coordinates")
		}
		filter.NearLat, filter.NearLng = lat, lng

		radius := 25.0
		if r := c.QueryParam("radius"); r != "" {
			parsed, err := strconv.ParseFloat(r, 64)
			if err != nil || parsed <= 0 {
				return filter, apiError(http.StatusBadRequest, dto.CodeValidation, "invalid radius")
			}
			radius = parsed
		}
		filter.RadiusKm = radius
	}

	if after := c.QueryParam("after"); after != "" {
		t, err := time.Parse(time.RFC3339, after)
		if err != nil {
			return filter, apiError(http.StatusBadRequest, dto.CodeValidation, "invalid after timestamp")
		}
		filter.After = &t
	}
	if before := c.QueryParam("before"); before != "" {
		t, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return filter, apiError(http.StatusBadRequest, dto.CodeValidation, "invalid before timestamp")
		}
		filter.Before = &t
	}

	return filter, nil
}
