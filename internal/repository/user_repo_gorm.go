package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"referralhub/internal/model"
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) CreateWithReferral(ctx context.Context, user *model.User, referral *model.Referral) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if referral == nil {
			return nil
		}
		referral.RefereeID = user.ID
		return tx.Create(referral).Error
	})
	return translateUserErr(err)
}

func (r *gormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("lower(username) = lower(?)", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func translateUserErr(err error) error {
	target, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch {
	case strings.Contains(target, "username"):
		return ErrUsernameTaken
	case strings.Contains(target, "email"):
		return ErrEmailTaken
	case strings.Contains(target, "referee_id"):
		return ErrAlreadyReferred
	}
	return err
}
