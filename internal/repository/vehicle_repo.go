package repository

import (
	"context"

	"gorm.io/gorm"

	"rideboard/internal/models"
)

// Vehicle writes take an optional tx so callers can pair them with the
// owning user's row update in one transaction. A nil tx falls back to the
// repository's own handle.
type VehicleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, id uint) (*models.Vehicle, error)
	FindByOwner(ctx context.Context, ownerID uint) (*models.Vehicle, error)
	Save(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *vehicleRepository) Create(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error {
	return r.handle(tx).WithContext(ctx).Create(vehicle).Error
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindByOwner(ctx context.Context, ownerID uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerID).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) Save(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error {
	return r.handle(tx).WithContext(ctx).Save(vehicle).Error
}

func (r *vehicleRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.handle(tx).WithContext(ctx).Delete(&models.Vehicle{}, id).Error
}
