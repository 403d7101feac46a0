package auth

import (
	"testing"
	"time"

	"github.com/invoicing/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-at-least-32-characters!!",
		AccessTokenExpiration: expiration,
		Issuer:                "invoicing-backend",
	})
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	orgID, userID := uuid.New(), uuid.New()

	token, expiresAt, err := svc.GenerateAccessToken(GenerateTokenInput{
		OrganizationID: orgID,
		UserID:         userID,
		Email:          "owner@acme.test",
		Role:           "owner",
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, orgID.String(), claims.OrganizationID)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "owner", claims.Role)

	gotOrg, err := claims.OrganizationUUID()
	require.NoError(t, err)
	assert.Equal(t, orgID, gotOrg)
}

func TestJWTValidationFailures(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-also-32-characters!!!",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "invoicing-backend",
		})
		token, _, err := other.GenerateAccessToken(GenerateTokenInput{
			OrganizationID: uuid.New(),
			UserID:         uuid.New(),
		})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		short := newTestJWTService(-time.Minute)
		token, _, err := short.GenerateAccessToken(GenerateTokenInput{
			OrganizationID: uuid.New(),
			UserID:         uuid.New(),
		})
		require.NoError(t, err)

		_, err = short.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
