package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"referralhub/internal/model"
	"referralhub/internal/repository"
	"referralhub/pkg/crypto"
	jwtpkg "referralhub/pkg/jwt"
)

// TokenPair is returned after a successful login.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	ReferralCode string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	codeRepo   repository.ReferralCodeRepository
	jwtManager *jwtpkg.Manager
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	codeRepo repository.ReferralCodeRepository,
	jwtManager *jwtpkg.Manager,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		codeRepo:   codeRepo,
		jwtManager: jwtManager,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	// 1. Validate the referral code before anything is written
	var referral *model.Referral
	if code := strings.TrimSpace(in.ReferralCode); code != "" {
		rc, err := s.codeRepo.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReferralCodeInvalid
			}
			return nil, fmt.Errorf("failed to find referral code: %w", err)
		}
		if rc.IsExpired(s.now()) {
			return nil, ErrReferralCodeExpired
		}
		referral = &model.Referral{
			ReferralCodeID: rc.ID,
			Code:           rc.Code,
			ReferrerID:     rc.OwnerID,
		}
	}

	// 2. Hash password
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. Create user and referral together
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.CreateWithReferral(ctx, user, referral); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	fields := []zap.Field{zap.String("user_id", user.ID.String())}
	if referral != nil {
		fields = append(fields, zap.String("referrer_id", referral.ReferrerID.String()))
	}
	s.logger.Info("user registered", fields...)
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	refresh, _, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	access, err := s.jwtManager.AccessFromRefresh(refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return &TokenPair{Refresh: refresh, Access: access}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return "", ErrRefreshTokenInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRefreshTokenInvalid
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user.Status != model.UserStatusActive {
		return "", ErrUserDisabled
	}
	return s.jwtManager.GenerateAccessToken(user.ID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ AuthService = (*authService)(nil)
