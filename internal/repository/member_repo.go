package repository

import (
	"context"

	"gorm.io/gorm"

	"rideboard/internal/models"
)

type MemberRepository interface {
	Create(ctx context.Context, tx *gorm.DB, member *models.OfferingMember) error
	FindByOfferingAndUser(ctx context.Context, tx *gorm.DB, offeringID, userID uint) (*models.OfferingMember, error)
	NextPosition(ctx context.Context, tx *gorm.DB, offeringID uint) (int, error)
	Accept(ctx context.Context, tx *gorm.DB, memberID uint) error
	Delete(ctx context.Context, tx *gorm.DB, memberID uint) error
	DeleteByOffering(ctx context.Context, tx *gorm.DB, offeringID uint) error
	ListByOffering(ctx context.Context, offeringID uint) ([]models.OfferingMember, error)
	ListByUser(ctx context.Context, userID uint) ([]models.OfferingMember, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, offeringID uint, status models.MemberStatus) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *memberRepository) Create(ctx context.Context, tx *gorm.DB, member *models.OfferingMember) error {
	return r.handle(tx).WithContext(ctx).Create(member).Error
}

func (r *memberRepository) FindByOfferingAndUser(ctx context.Context, tx *gorm.DB, offeringID, userID uint) (*models.OfferingMember, error) {
	var member models.OfferingMember
	err := r.handle(tx).WithContext(ctx).
		Where("offering_id = ? AND user_id = ?", offeringID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// NextPosition returns the waitlist tail position for FIFO appends.
func (r *memberRepository) NextPosition(ctx context.Context, tx *gorm.DB, offeringID uint) (int, error) {
	var max int
	err := r.handle(tx).WithContext(ctx).
		Model(&models.OfferingMember{}).
		Where("offering_id = ? AND status = ?", offeringID, models.StatusWaitlisted).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *memberRepository) Accept(ctx context.Context, tx *gorm.DB, memberID uint) error {
	return r.handle(tx).WithContext(ctx).
		Model(&models.OfferingMember{}).
		Where("id = ?", memberID).
		Updates(map[string]interface{}{
			"status":   models.StatusAccepted,
			"position": nil,
		}).Error
}

func (r *memberRepository) Delete(ctx context.Context, tx *gorm.DB, memberID uint) error {
	return r.handle(tx).WithContext(ctx).Delete(&models.OfferingMember{}, memberID).Error
}

func (r *memberRepository) DeleteByOffering(ctx context.Context, tx *gorm.DB, offeringID uint) error {
	return r.handle(tx).WithContext(ctx).
		Where("offering_id = ?", offeringID).
		Delete(&models.OfferingMember{}).Error
}

func (r *memberRepository) ListByOffering(ctx context.Context, offeringID uint) ([]models.OfferingMember, error) {
	var members []models.OfferingMember
	err := r.db.WithContext(ctx).
		Where("offering_id = ?", offeringID).
		Order("status ASC, position ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) ListByUser(ctx context.Context, userID uint) ([]models.OfferingMember, error) {
	var members []models.OfferingMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) CountByStatus(ctx context.Context, tx *gorm.DB, offeringID uint, status models.MemberStatus) (int64, error) {
	var count int64
	err := r.handle(tx).WithContext(ctx).
		Model(&models.OfferingMember{}).
		Where("offering_id = ? AND status = ?", offeringID, status).
		Count(&count).Error
	return count, err
}

// DeleteOrphans drops member rows whose offering or user no longer exists.
// Safe to run repeatedly.
func (r *memberRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM offering_members m
		WHERE NOT EXISTS (SELECT 1 FROM offerings o WHERE o.id = m.offering_id)
		   OR NOT EXISTS (SELECT 1 FROM users u WHERE u.id = m.user_id)
	`)
	return res.RowsAffected, res.Error
}
