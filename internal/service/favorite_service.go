package service

import (
	"context"
	"errors"

	"rideboard/internal/models"
	"rideboard/internal/repository"
)

var ErrItemNotFound = errors.New("favorite target not found")

// FavoriteService keeps bookmark lists consistent with what actually exists.
type FavoriteService interface {
	// Toggle flips the favorite state and reports whether the item is now
	// favorited. Redundant toggles never error.
	Toggle(ctx context.Context, userID uint, itemType models.FavoriteType, itemID uint) (bool, error)
	ListFor(ctx context.Context, userID uint) ([]models.Offering, []models.Request, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	offeringRepo repository.OfferingRepository
	requestRepo  repository.RequestRepository
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	offeringRepo repository.OfferingRepository,
	requestRepo repository.RequestRepository,
) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		offeringRepo: offeringRepo,
		requestRepo:  requestRepo,
	}
}

func (s *favoriteService) Toggle(ctx context.Context, userID uint, itemType models.FavoriteType, itemID uint) (bool, error) {
	switch itemType {
	case models.FavoriteOffering:
		if _, err := s.offeringRepo.FindByID(ctx, itemID); err != nil {
			return false, ErrItemNotFound
		}
	case models.FavoriteRequest:
		if _, err := s.requestRepo.FindByID(ctx, itemID); err != nil {
			return false, ErrItemNotFound
		}
	default:
		return false, ErrItemNotFound
	}

	removed, err := s.favoriteRepo.Remove(ctx, nil, userID, itemType, itemID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if err := s.favoriteRepo.Add(ctx, nil, userID, itemType, itemID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *favoriteService) ListFor(ctx context.Context, userID uint) ([]models.Offering, []models.Request, error) {
	favorites, err := s.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var offeringIDs, requestIDs []uint
	for _, f := range favorites {
		switch f.ItemType {
		case models.FavoriteOffering:
			offeringIDs = append(offeringIDs, f.ItemID)
		case models.FavoriteRequest:
			requestIDs = append(requestIDs, f.ItemID)
		}
	}

	offerings, err := s.offeringRepo.FindByIDs(ctx, offeringIDs)
	if err != nil {
		return nil, nil, err
	}
	requests, err := s.requestRepo.FindByIDs(ctx, requestIDs)
	if err != nil {
		return nil, nil, err
	}
	return offerings, requests, nil
}
