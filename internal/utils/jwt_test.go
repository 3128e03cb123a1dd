package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
)

func tokenConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "unit_test_secret",
		JWTRefreshSecret:          "unit_test_refresh_secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}
}

func testPrincipal() *models.Principal {
	return &models.Principal{
		BaseModel: models.BaseModel{ID: "p-123"},
		Email:     "user@example.com",
		Username:  "user",
		Role:      models.RoleDoctor,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := tokenConfig()
	access, refresh, err := GenerateTokens(testPrincipal(), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "p-123", claims.PrincipalID)
	assert.Equal(t, models.RoleDoctor, claims.Role)

	refreshClaims, err := ValidateToken(refresh, cfg.JWTRefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "p-123", refreshClaims.PrincipalID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	cfg := tokenConfig()
	access, _, err := GenerateTokens(testPrincipal(), cfg)
	require.NoError(t, err)

	_, err = ValidateToken(access, "some_other_secret")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := tokenConfig()
	cfg.JWTExpirationMinutes = -1

	access, _, err := GenerateTokens(testPrincipal(), cfg)
	require.NoError(t, err)

	_, err = ValidateToken(access, cfg.JWTSecret)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", "unit_test_secret")
	assert.Error(t, err)
}
