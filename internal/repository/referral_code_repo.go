package repository

import (
	"context"

	"github.com/google/uuid"

	"referralhub/internal/model"
)

type ReferralCodeRepository interface {
	// Create inserts code for its owner. It fails with ErrOwnerHasReferralCode
	// or ErrReferralCodeTaken, including when a concurrent insert wins the race.
	Create(ctx context.Context, code *model.ReferralCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ReferralCode, error)
	GetByCode(ctx context.Context, code string) (*model.ReferralCode, error)
	GetByOwnerEmail(ctx context.Context, email string) (*model.ReferralCode, error)
	List(ctx context.Context) ([]model.ReferralCode, error)
	// Update rewrites code and expiration_date of an existing record.
	Update(ctx context.Context, code *model.ReferralCode) error
	Delete(ctx context.Context, id uuid.UUID) error
}
