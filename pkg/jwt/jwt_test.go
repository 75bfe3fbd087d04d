package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessFromRefreshKeepsSubject(t *testing.T) {
	m := NewManager("secret", "referralhub", time.Minute, time.Hour)
	userID := uuid.New()

	refresh, refreshClaims, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)

	access, err := m.AccessFromRefresh(refresh)
	require.NoError(t, err)

	claims, err := m.Validate(access)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestAccessFromRefreshRejectsAccessToken(t *testing.T) {
	m := NewManager("secret", "referralhub", time.Minute, time.Hour)

	access, err := m.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = m.AccessFromRefresh(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	m := NewManager("secret", "referralhub", time.Minute, time.Hour)
	other := NewManager("other-secret", "referralhub", time.Minute, time.Hour)
	otherIssuer := NewManager("secret", "someone-else", time.Minute, time.Hour)
	expired := NewManager("secret", "referralhub", -time.Minute, time.Hour)

	for name, issuer := range map[string]*Manager{
		"wrong key":    other,
		"wrong issuer": otherIssuer,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			token, err := issuer.GenerateAccessToken(uuid.New())
			require.NoError(t, err)
			_, err = m.Validate(token)
			assert.Error(t, err)
		})
	}
}
