package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOwnerHasReferralCode = errors.New("owner already has a referral code")
	ErrReferralCodeTaken    = errors.New("referral code already taken")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already taken")
	ErrAlreadyReferred      = errors.New("user already referred")
)

const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a unique-index violation and, if so,
// returns the constraint name (postgres) or the failing column/index (sqlite).
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return pgErr.ConstraintName, true
	}
	msg := err.Error()
	const sqliteMarker = "UNIQUE constraint failed"
	if i := strings.Index(msg, sqliteMarker); i >= 0 {
		return msg[i+len(sqliteMarker):], true
	}
	return "", false
}
