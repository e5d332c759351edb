package auth

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key",
		AccessTokenExpiration: expiration,
		Issuer:                "ledger-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)
	tenantID := uuid.New()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(tenantID, userID, "accountant")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, tenantID.String(), claims.TenantID)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "accountant", claims.Username)
	assert.Equal(t, "ledger-test", claims.Issuer)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), uuid.New(), "")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "ledger-test",
	})

	token, err := other.GenerateAccessToken(uuid.New(), uuid.New(), "")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestService(time.Hour)
	_, err := svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
