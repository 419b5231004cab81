package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rideboard/internal/models"
	"rideboard/internal/repository"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrVehicleExists   = errors.New("user already has a vehicle")
	ErrVehicleInUse    = errors.New("vehicle is attached to a live offering")
)

type VehicleService interface {
	Create(ctx context.Context, ownerID uint, vehicle *models.Vehicle) error
	GetMine(ctx context.Context, ownerID uint) (*models.Vehicle, error)
	Update(ctx context.Context, vehicleID, ownerID uint, changes *models.Vehicle) (*models.Vehicle, error)
	Delete(ctx context.Context, vehicleID, ownerID uint) error
}

type vehicleService struct {
	vehicleRepo  repository.VehicleRepository
	offeringRepo repository.OfferingRepository
	userRepo     repository.UserRepository
}

func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	offeringRepo repository.OfferingRepository,
	userRepo repository.UserRepository,
) VehicleService {
	return &vehicleService{
		vehicleRepo:  vehicleRepo,
		offeringRepo: offeringRepo,
		userRepo:     userRepo,
	}
}

// Create enforces one vehicle per user and links it onto the profile.
func (s *vehicleService) Create(ctx context.Context, ownerID uint, vehicle *models.Vehicle) error {
	if _, err := s.vehicleRepo.FindByOwner(ctx, ownerID); err == nil {
		return ErrVehicleExists
	}

	vehicle.OwnerUserID = ownerID
	// Insert and profile link commit together so a crash cannot leave a
	// vehicle row no profile points at.
	return s.userRepo.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.vehicleRepo.Create(ctx, tx, vehicle); err != nil {
			return err
		}
		user, err := s.userRepo.FindByID(ctx, ownerID)
		if err != nil {
			return err
		}
		user.VehicleID = &vehicle.ID
		return s.userRepo.Save(ctx, tx, user)
	})
}

func (s *vehicleService) GetMine(ctx context.Context, ownerID uint) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, ErrVehicleNotFound
	}
	return vehicle, nil
}

func (s *vehicleService) Update(ctx context.Context, vehicleID, ownerID uint, changes *models.Vehicle) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, ErrVehicleNotFound
	}
	if vehicle.OwnerUserID != ownerID {
		return nil, ErrForbidden
	}

	vehicle.Color = changes.Color
	vehicle.Make = changes.Make
	vehicle.Model = changes.Model
	vehicle.Seats = changes.Seats
	if err := s.vehicleRepo.Save(ctx, nil, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *vehicleService) Delete(ctx context.Context, vehicleID, ownerID uint) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return ErrVehicleNotFound
	}
	if vehicle.OwnerUserID != ownerID {
		return ErrForbidden
	}

	inUse, err := s.offeringRepo.CountByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return ErrVehicleInUse
	}

	return s.userRepo.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.vehicleRepo.Delete(ctx, tx, vehicleID); err != nil {
			return err
		}
		user, err := s.userRepo.FindByID(ctx, ownerID)
		if err != nil {
			return err
		}
		user.VehicleID = nil
		return s.userRepo.Save(ctx, tx, user)
	})
}
