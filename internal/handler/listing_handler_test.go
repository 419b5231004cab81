package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"rideboard/internal/dto"
	"rideboard/internal/models"
	"rideboard/internal/repository"
)

func TestListings_Handler_CombinesBothKinds(t *testing.T) {
	offerings := &mockOfferingService{
		listFn: func(ctx context.Context, filter repository.ListingFilter) ([]models.Offering, error) {
			return []models.Offering{{ID: 1, Name: "Ride", TotalSeats: 3, AvailableSeats: 2}}, nil
		},
	}
	requests := &mockRequestService{
		listFn: func(ctx context.Context, filter repository.ListingFilter) ([]models.Request, error) {
			return []models.Request{{ID: 2, Name: "Need a lift"}}, nil
		},
	}

	c, rec := newTestContext(http.MethodGet, "/api/v1/listings", "", 4)

	h := NewListingHandler(offerings, requests)
	assert.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ListingsResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Offerings, 1)
	assert.Len(t, resp.Requests, 1)
}

func TestListings_Handler_BadFilter(t *testing.T) {
	h := NewListingHandler(nil, nil)

	c, _ := newTestContext(http.MethodGet, "/api/v1/listings?before=notatime", "", 4)
	assertAPIError(t, h.List(c), http.StatusBadRequest, dto.CodeValidation)
}
