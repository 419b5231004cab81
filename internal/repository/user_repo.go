package repository

import (
	"context"

	"gorm.io/gorm"

	"rideboard/internal/models"
)

type UserRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByAuthUID(ctx context.Context, authUID string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	Save(ctx context.Context, tx *gorm.DB, user *models.User) error
	ReplaceContacts(ctx context.Context, tx *gorm.DB, userID uint, entries []models.ContactEntry) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("ContactEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByAuthUID(ctx context.Context, authUID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("auth_uid = ?", authUID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Find(&users, ids).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Save(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return r.handle(tx).WithContext(ctx).Omit("ContactEntries").Save(user).Error
}

// ReplaceContacts swaps the user's contact list for the given ordered set.
func (r *userRepository) ReplaceContacts(ctx context.Context, tx *gorm.DB, userID uint, entries []models.ContactEntry) error {
	db := r.handle(tx).WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&models.ContactEntry{}).Error; err != nil {
		return err
	}
	for i := range entries {
		entries[i].ID = 0
		entries[i].UserID = userID
		entries[i].Position = i
	}
	if len(entries) == 0 {
		return nil
	}
	return db.Create(&entries).Error
}

func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.handle(tx).WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&models.ContactEntry{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.User{}, id).Error
}
