package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rideboard/internal/models"
)

// ErrSeatGuard fires when a seat adjustment would leave available_seats
// outside [0, total_seats]. Under the offering row lock this is a backstop,
// not an expected path.
var ErrSeatGuard = errors.New("seat adjustment rejected by range guard")

// ListingFilter narrows offering/request listings. Zero values disable a
// clause.
type ListingFilter struct {
	NearLat  float64
	NearLng  float64
	RadiusKm float64
	After    *time.Time
	Before   *time.Time
}

// Repository methods take an optional transaction handle; nil means the
// repository's own connection.
type OfferingRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, tx *gorm.DB, offering *models.Offering) error
	FindByID(ctx context.Context, id uint) (*models.Offering, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Offering, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Offering, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Offering, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Offering, error)
	AdjustSeats(ctx context.Context, tx *gorm.DB, id uint, delta int) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	CountByVehicle(ctx context.Context, vehicleID uint) (int64, error)
	FindDueReminders(ctx context.Context, until time.Time) ([]models.Offering, error)
	MarkReminderSent(ctx context.Context, id uint) error
	DeleteArrivedBefore(ctx context.Context, cutoff time.Time) ([]uint, error)
}

type offeringRepository struct {
	db *gorm.DB
}

func NewOfferingRepository(db *gorm.DB) OfferingRepository {
	return &offeringRepository{db: db}
}

func (r *offeringRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *offeringRepository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *offeringRepository) Create(ctx context.Context, tx *gorm.DB, offering *models.Offering) error {
	return r.handle(tx).WithContext(ctx).Create(offering).Error
}

func (r *offeringRepository) FindByID(ctx context.Context, id uint) (*models.Offering, error) {
	var offering models.Offering
	if err := r.db.WithContext(ctx).First(&offering, id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *offeringRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Offering, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var offerings []models.Offering
	if err := r.db.WithContext(ctx).Find(&offerings, ids).Error; err != nil {
		return nil, err
	}
	return offerings, nil
}

// LockByID acquires a row-level lock on the offering so concurrent mutators
// on the same offering serialize.
func (r *offeringRepository) LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Offering, error) {
	var offering models.Offering
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&offering, id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *offeringRepository) List(ctx context.Context, filter ListingFilter) ([]models.Offering, error) {
	var offerings []models.Offering
	q := applyFilter(r.db.WithContext(ctx), filter)
	if err := q.Order("arrival_at ASC").Find(&offerings).Error; err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *offeringRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Offering, error) {
	var offerings []models.Offering
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerID).
		Order("arrival_at ASC").
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

// AdjustSeats moves available_seats by delta with a range guard in the WHERE
// clause, so even a buggy caller cannot push the counter below zero or above
// total_seats.
func (r *offeringRepository) AdjustSeats(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	res := r.handle(tx).WithContext(ctx).
		Model(&models.Offering{}).
		Where("id = ? AND available_seats + ? >= 0 AND available_seats + ? <= total_seats", id, delta, delta).
		Update("available_seats", gorm.Expr("available_seats + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSeatGuard
	}
	return nil
}

func (r *offeringRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.handle(tx).WithContext(ctx).Delete(&models.Offering{}, id).Error
}

func (r *offeringRepository) CountByVehicle(ctx context.Context, vehicleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offering{}).
		Where("vehicle_id = ?", vehicleID).
		Count(&count).Error
	return count, err
}

func (r *offeringRepository) FindDueReminders(ctx context.Context, until time.Time) ([]models.Offering, error) {
	var offerings []models.Offering
	err := r.db.WithContext(ctx).
		Where("reminder_sent = false AND arrival_at > now() AND arrival_at <= ?", until).
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *offeringRepository) MarkReminderSent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Offering{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}

// DeleteArrivedBefore removes stale offerings and returns their ids so the
// caller can purge dependent rows.
func (r *offeringRepository) DeleteArrivedBefore(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Offering{}).
		Where("arrival_at < ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Delete(&models.Offering{}, ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func applyFilter(q *gorm.DB, filter ListingFilter) *gorm.DB {
	if filter.RadiusKm > 0 {
		// Bounding-box approximation: one degree of latitude is ~111 km.
		latDelta := filter.RadiusKm / 111.0
		lngDelta := filter.RadiusKm / 78.0
		q = q.Where("lat BETWEEN ? AND ?", filter.NearLat-latDelta, filter.NearLat+latDelta).
			Where("lng BETWEEN ? AND ?", filter.NearLng-lngDelta, filter.NearLng+lngDelta)
	}
	if filter.After != nil {
		q = q.Where("arrival_at >= ?", *filter.After)
	}
	if filter.Before != nil {
		q = q.Where("arrival_at <= ?", *filter.Before)
	}
	return q
}
