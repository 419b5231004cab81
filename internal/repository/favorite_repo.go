package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rideboard/internal/models"
)

type FavoriteRepository interface {
	Add(ctx context.Context, tx *gorm.DB, userID uint, itemType models.FavoriteType, itemID uint) error
	Remove(ctx context.Context, tx *gorm.DB, userID uint, itemType models.FavoriteType, itemID uint) (bool, error)
	Exists(ctx context.Context, userID uint, itemType models.FavoriteType, itemID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Favorite, error)
	PurgeItem(ctx context.Context, tx *gorm.DB, itemType models.FavoriteType, itemID uint) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Add is idempotent: a redundant add hits the unique index and does nothing.
func (r *favoriteRepository) Add(ctx context.Context, tx *gorm.DB, userID uint, itemType models.FavoriteType, itemID uint) error {
	fav := models.Favorite{UserID: userID, ItemType: itemType, ItemID: itemID}
	return r.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, tx *gorm.DB, userID uint, itemType models.FavoriteType, itemID uint) (bool, error) {
	res := r.handle(tx).WithContext(ctx).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		Delete(&models.Favorite{})
	return res.RowsAffected > 0, res.Error
}

func (r *favoriteRepository) Exists(ctx context.Context, userID uint, itemType models.FavoriteType, itemID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

// PurgeItem removes a deleted offering/request from every favorites list.
func (r *favoriteRepository) PurgeItem(ctx context.Context, tx *gorm.DB, itemType models.FavoriteType, itemID uint) error {
	return r.handle(tx).WithContext(ctx).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Delete(&models.Favorite{}).Error
}

func (r *favoriteRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	return r.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Favorite{}).Error
}

// DeleteOrphans drops favorites whose target row no longer exists. The sweep
// is a safety net; normal deletes purge favorites in the same transaction.
func (r *favoriteRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM favorites f
		WHERE (f.item_type = 'offering' AND NOT EXISTS (SELECT 1 FROM offerings o WHERE o.id = f.item_id))
		   OR (f.item_type = 'request' AND NOT EXISTS (SELECT 1 FROM requests r WHERE r.id = f.item_id))
	`)
	return res.RowsAffected, res.Error
}
