package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"referralhub/internal/cache"
	"referralhub/internal/model"
	"referralhub/internal/repository"
)

const maxReferralCodeLength = 10

type ReferralCodeInput struct {
	Code           string
	ExpirationDate *time.Time
}

type ReferralCodeService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in ReferralCodeInput) (*model.ReferralCode, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ReferralCode, error)
	List(ctx context.Context) ([]model.ReferralCode, error)
	Update(ctx context.Context, actorID, id uuid.UUID, in ReferralCodeInput) (*model.ReferralCode, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	// LookupByEmail returns the code owned by the user with the given email.
	// Expired codes are returned as well.
	LookupByEmail(ctx context.Context, email string) (string, error)
	ListReferrals(ctx context.Context, referrerID uuid.UUID) ([]model.Referral, error)
}

type referralCodeService struct {
	codeRepo     repository.ReferralCodeRepository
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	cache        *cache.ReferralCache
	logger       *zap.Logger
}

func NewReferralCodeService(
	codeRepo repository.ReferralCodeRepository,
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	referralCache *cache.ReferralCache,
	logger *zap.Logger,
) ReferralCodeService {
	return &referralCodeService{
		codeRepo:     codeRepo,
		userRepo:     userRepo,
		referralRepo: referralRepo,
		cache:        referralCache,
		logger:       logger,
	}
}

func (s *referralCodeService) Create(ctx context.Context, ownerID uuid.UUID, in ReferralCodeInput) (*model.ReferralCode, error) {
	code, err := normalizeCode(in.Code)
	if err != nil {
		return nil, err
	}

	owner, err := s.findUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rc := &model.ReferralCode{
		Code:           code,
		OwnerID:        owner.ID,
		ExpirationDate: in.ExpirationDate,
	}
	if err := s.codeRepo.Create(ctx, rc); err != nil {
		return nil, translateCodeErr(err)
	}

	s.remember(ctx, owner.ID, owner.Email, rc.Code)
	return rc, nil
}

func (s *referralCodeService) Get(ctx context.Context, id uuid.UUID) (*model.ReferralCode, error) {
	rc, err := s.codeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateCodeErr(err)
	}
	return rc, nil
}

func (s *referralCodeService) List(ctx context.Context) ([]model.ReferralCode, error) {
	codes, err := s.codeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referral codes: %w", err)
	}
	return codes, nil
}

func (s *referralCodeService) Update(ctx context.Context, actorID, id uuid.UUID, in ReferralCodeInput) (*model.ReferralCode, error) {
	code, err := normalizeCode(in.Code)
	if err != nil {
		return nil, err
	}

	rc, err := s.ownedCode(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Evict(ctx, rc.OwnerID); err != nil {
		return nil, fmt.Errorf("failed to evict cached referral code: %w", err)
	}
	rc.Code = code
	rc.ExpirationDate = in.ExpirationDate
	if err := s.codeRepo.Update(ctx, rc); err != nil {
		return nil, translateCodeErr(err)
	}
	// A lookup that read the old row may have refilled the entry meanwhile.
	s.forget(ctx, rc.OwnerID)

	return rc, nil
}

func (s *referralCodeService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	rc, err := s.ownedCode(ctx, actorID, id)
	if err != nil {
		return err
	}

	// Evict before deleting; on eviction failure the record stays.
	if err := s.cache.Evict(ctx, rc.OwnerID); err != nil {
		return fmt.Errorf("failed to evict cached referral code: %w", err)
	}
	if err := s.codeRepo.Delete(ctx, rc.ID); err != nil {
		return translateCodeErr(err)
	}
	s.forget(ctx, rc.OwnerID)

	s.logger.Info("referral code deleted",
		zap.String("referral_code_id", rc.ID.String()),
		zap.String("owner_id", rc.OwnerID.String()),
	)
	return nil
}

func (s *referralCodeService) LookupByEmail(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", ErrEmailRequired
	}

	code, hit, err := s.cache.CodeByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("referral cache read failed", zap.Error(err))
	} else if hit {
		return code, nil
	}

	rc, err := s.codeRepo.GetByOwnerEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoCodeForEmail
		}
		return "", fmt.Errorf("failed to find referral code: %w", err)
	}

	s.remember(ctx, rc.OwnerID, email, rc.Code)
	return rc.Code, nil
}

func (s *referralCodeService) ListReferrals(ctx context.Context, referrerID uuid.UUID) ([]model.Referral, error) {
	referrals, err := s.referralRepo.ListByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}

func (s *referralCodeService) ownedCode(ctx context.Context, actorID, id uuid.UUID) (*model.ReferralCode, error) {
	rc, err := s.codeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateCodeErr(err)
	}
	if rc.OwnerID != actorID {
		return nil, ErrReferralCodeNotOwned
	}
	return rc, nil
}

func (s *referralCodeService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// remember writes the cache entries. The store is authoritative, so a
// failure here is logged and otherwise ignored.
func (s *referralCodeService) remember(ctx context.Context, ownerID uuid.UUID, email, code string) {
	if err := s.cache.Put(ctx, ownerID, email, code); err != nil {
		s.logger.Warn("referral cache write failed",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
	}
}

// forget evicts the owner's entry after a write has committed. The record is
// already changed, so a failure is only logged.
func (s *referralCodeService) forget(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cache.Evict(ctx, ownerID); err != nil {
		s.logger.Warn("referral cache eviction failed",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
	}
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if n := utf8.RuneCountInString(code); n == 0 || n > maxReferralCodeLength {
		return "", ErrReferralCodeFormat
	}
	return code, nil
}

func translateCodeErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrReferralCodeNotFound
	case errors.Is(err, repository.ErrOwnerHasReferralCode):
		return ErrReferralCodeExists
	case errors.Is(err, repository.ErrReferralCodeTaken):
		return ErrReferralCodeTaken
	}
	return fmt.Errorf("referral code store: %w", err)
}

var _ ReferralCodeService = (*referralCodeService)(nil)
