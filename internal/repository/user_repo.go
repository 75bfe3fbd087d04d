package repository

import (
	"context"

	"github.com/google/uuid"

	"referralhub/internal/model"
)

type UserRepository interface {
	// CreateWithReferral inserts user and, when referral is non-nil, the
	// referral row pointing at it, in one transaction.
	CreateWithReferral(ctx context.Context, user *model.User, referral *model.Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
