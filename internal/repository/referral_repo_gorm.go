package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"referralhub/internal/model"
)

type gormReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &gormReferralRepository{db: db}
}

func (r *gormReferralRepository) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]model.Referral, error) {
	var referrals []model.Referral
	err := r.db.WithContext(ctx).
		Preload("Referee").
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Find(&referrals).Error
	return referrals, err
}
