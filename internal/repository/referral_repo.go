package repository

import (
	"context"

	"github.com/google/uuid"

	"referralhub/internal/model"
)

type ReferralRepository interface {
	// ListByReferrer returns referrals made with the referrer's codes, newest
	// first, with Referee preloaded.
	ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]model.Referral, error)
}
