package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rideboard/internal/models"
)

type RequestRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, tx *gorm.DB, request *models.Request) error
	FindByID(ctx context.Context, id uint) (*models.Request, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Request, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Request, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Request, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.Request, error)
	SetAcceptor(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error)
	ClearAcceptor(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	DeleteArrivedBefore(ctx context.Context, cutoff time.Time) ([]uint, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *requestRepository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *requestRepository) Create(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	return r.handle(tx).WithContext(ctx).Create(request).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uint) (*models.Request, error) {
	var request models.Request
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Request, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var requests []models.Request
	if err := r.db.WithContext(ctx).Find(&requests, ids).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Request, error) {
	var request models.Request
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) List(ctx context.Context, filter ListingFilter) ([]models.Request, error) {
	var requests []models.Request
	q := applyFilter(r.db.WithContext(ctx), filter)
	if err := q.Order("arrival_at ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.Request, error) {
	var requests []models.Request
	err := r.db.WithContext(ctx).
		Where("requester_user_id = ?", requesterID).
		Order("arrival_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// SetAcceptor claims an open request. The IS NULL guard makes the claim a
// compare-and-swap: the second of two racing acceptors sees false.
func (r *requestRepository) SetAcceptor(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error) {
	res := r.handle(tx).WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ? AND accepted_by_user_id IS NULL", id).
		Update("accepted_by_user_id", userID)
	return res.RowsAffected > 0, res.Error
}

func (r *requestRepository) ClearAcceptor(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error) {
	res := r.handle(tx).WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ? AND accepted_by_user_id = ?", id, userID).
		Update("accepted_by_user_id", nil)
	return res.RowsAffected > 0, res.Error
}

func (r *requestRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.handle(tx).WithContext(ctx).Delete(&models.Request{}, id).Error
}

func (r *requestRepository) DeleteArrivedBefore(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("arrival_at < ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Delete(&models.Request{}, ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
