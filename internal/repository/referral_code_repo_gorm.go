package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"referralhub/internal/model"
)

type gormReferralCodeRepository struct {
	db *gorm.DB
}

func NewReferralCodeRepository(db *gorm.DB) ReferralCodeRepository {
	return &gormReferralCodeRepository{db: db}
}

func (r *gormReferralCodeRepository) Create(ctx context.Context, code *model.ReferralCode) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ReferralCode{}).
			Where("owner_id = ?", code.OwnerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOwnerHasReferralCode
		}

		if err := tx.Model(&model.ReferralCode{}).
			Where("code = ?", code.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrReferralCodeTaken
		}

		return tx.Create(code).Error
	})
	return translateReferralCodeErr(err)
}

func (r *gormReferralCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ReferralCode, error) {
	var code model.ReferralCode
	if err := r.db.WithContext(ctx).First(&code, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *gormReferralCodeRepository) GetByCode(ctx context.Context, code string) (*model.ReferralCode, error) {
	var referralCode model.ReferralCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&referralCode).Error; err != nil {
		return nil, err
	}
	return &referralCode, nil
}

func (r *gormReferralCodeRepository) GetByOwnerEmail(ctx context.Context, email string) (*model.ReferralCode, error) {
	var code model.ReferralCode
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = referral_codes.owner_id AND users.deleted_at IS NULL").
		Where("users.email = ?", email).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *gormReferralCodeRepository) List(ctx context.Context) ([]model.ReferralCode, error) {
	var codes []model.ReferralCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *gormReferralCodeRepository) Update(ctx context.Context, code *model.ReferralCode) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ReferralCode{}).
			Where("code = ? AND id <> ?", code.Code, code.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrReferralCodeTaken
		}

		result := tx.Model(&model.ReferralCode{}).
			Where("id = ?", code.ID).
			Updates(map[string]interface{}{
				"code":            code.Code,
				"expiration_date": code.ExpirationDate,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateReferralCodeErr(err)
}

func (r *gormReferralCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.ReferralCode{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func translateReferralCodeErr(err error) error {
	target, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	if strings.Contains(target, "owner_id") {
		return ErrOwnerHasReferralCode
	}
	return ErrReferralCodeTaken
}
