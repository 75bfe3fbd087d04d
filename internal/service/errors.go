package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid or expired")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserDisabled        = errors.New("user is disabled")
	ErrMissingCredentials  = errors.New("username, password and email are required")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrEmailTaken          = errors.New("email already taken")

	ErrReferralCodeInvalid  = errors.New("invalid referral code")
	ErrReferralCodeExpired  = errors.New("referral code has expired")
	ErrReferralCodeFormat   = errors.New("code must be between 1 and 10 characters")
	ErrReferralCodeExists   = errors.New("you already have an active referral code")
	ErrReferralCodeTaken    = errors.New("referral code already taken")
	ErrReferralCodeNotFound = errors.New("referral code not found")
	ErrReferralCodeNotOwned = errors.New("referral code does not belong to this user")
	ErrEmailRequired        = errors.New("email is required")
	ErrNoCodeForEmail       = errors.New("referral code not found for this email")
)
