package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rideboard/internal/models"
	"rideboard/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type ProfileUpdate struct {
	Name              string
	ContactEntries    []models.ContactEntry
	AcceptedAgreement *bool
}

type UserService interface {
	EnsureUser(ctx context.Context, authUID, email string) (*models.User, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uint) error
}

type userService struct {
	userRepo     repository.UserRepository
	vehicleRepo  repository.VehicleRepository
	offeringRepo repository.OfferingRepository
	memberRepo   repository.MemberRepository
	requestRepo  repository.RequestRepository
	favoriteRepo repository.FavoriteRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	vehicleRepo repository.VehicleRepository,
	offeringRepo repository.OfferingRepository,
	memberRepo repository.MemberRepository,
	requestRepo repository.RequestRepository,
	favoriteRepo repository.FavoriteRepository,
) UserService {
	return &userService{
		userRepo:     userRepo,
		vehicleRepo:  vehicleRepo,
		offeringRepo: offeringRepo,
		memberRepo:   memberRepo,
		requestRepo:  requestRepo,
		favoriteRepo: favoriteRepo,
	}
}

// EnsureUser provisions a local row for a verified identity-provider
// subject on first sight.
func (s *userService) EnsureUser(ctx context.Context, authUID, email string) (*models.User, error) {
	user, err := s.userRepo.FindByAuthUID(ctx, authUID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{AuthUID: authUID, Email: email}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two first-time requests can race past the lookup; the loser
		// hits the unique index on auth_uid. The winner's row is the
		// one we want.
		if existing, lookupErr := s.userRepo.FindByAuthUID(ctx, authUID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	var result *models.User
	err := s.userRepo.InTx(ctx, func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return ErrUserNotFound
		}

		user.Name = update.Name
		if update.AcceptedAgreement != nil {
			user.AcceptedAgreement = *update.AcceptedAgreement
		}
		user.CompletedProfile = user.Name != "" &&
			len(update.ContactEntries) > 0 &&
			user.AcceptedAgreement

		if err := s.userRepo.ReplaceContacts(ctx, tx, userID, update.ContactEntries); err != nil {
			return err
		}
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, result.ID)
}

// DeleteAccount does explicit cleanup: owned offerings with their members
// and favorites, requests, memberships (restoring seats the user held),
// vehicle and bookmarks. The maintenance sweep catches anything that slips
// through between the reads and the transaction.
func (s *userService) DeleteAccount(ctx context.Context, userID uint) error {
	owned, err := s.offeringRepo.ListByOwner(ctx, userID)
	if err != nil {
		return err
	}
	requests, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return err
	}
	memberships, err := s.memberRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	return s.userRepo.InTx(ctx, func(tx *gorm.DB) error {
		for _, offering := range owned {
			if err := s.memberRepo.DeleteByOffering(ctx, tx, offering.ID); err != nil {
				return err
			}
			if err := s.favoriteRepo.PurgeItem(ctx, tx, models.FavoriteOffering, offering.ID); err != nil {
				return err
			}
			if err := s.offeringRepo.Delete(ctx, tx, offering.ID); err != nil {
				return err
			}
		}

		for _, request := range requests {
			if err := s.favoriteRepo.PurgeItem(ctx, tx, models.FavoriteRequest, request.ID); err != nil {
				return err
			}
			if err := s.requestRepo.Delete(ctx, tx, request.ID); err != nil {
				return err
			}
		}

		for _, membership := range memberships {
			// Lock the offering so the seat release is serialized with
			// live accept/remove traffic.
			if _, err := s.offeringRepo.LockByID(ctx, tx, membership.OfferingID); err != nil {
				continue // offering already gone
			}
			if err := s.memberRepo.Delete(ctx, tx, membership.ID); err != nil {
				return err
			}
			if membership.Status == models.StatusAccepted {
				if err := s.offeringRepo.AdjustSeats(ctx, tx, membership.OfferingID, 1); err != nil {
					return err
				}
			}
		}

		if vehicle, err := s.vehicleRepo.FindByOwner(ctx, userID); err == nil {
			if err := s.vehicleRepo.Delete(ctx, tx, vehicle.ID); err != nil {
				return err
			}
		}

		if err := s.favoriteRepo.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, tx, userID)
	})
}
