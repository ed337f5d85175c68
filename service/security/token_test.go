package security

import (
	"math/rand"
	"testing"
	"tixgate/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	// Create test data
	id := uuid.New()
	tokenType := []TokenType{AccessToken, RefreshToken}[rand.Intn(2)]

	// Create token
	token, err := service.CreateToken(id, db.RoleUser, tokenType)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Verify token
	result, err := service.VerifyToken(token)
	require.NoError(t, err)
	require.NotEmpty(t, result)

	// Compare the test data with the extracted claims
	require.Equal(t, id, result.ID)
	require.Equal(t, db.RoleUser, result.Role)
	require.Equal(t, tokenType, result.TokenType)
}

func TestTokenInvalidRole(t *testing.T) {
	token, err := service.CreateToken(uuid.New(), db.Role("superuser"), AccessToken)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
}

func TestTokenWrongKey(t *testing.T) {
	other := NewJWTService([]byte("ANOTHER-KEY"), tokenExpiration, refreshTokenExpiration)

	token, err := other.CreateToken(uuid.New(), db.RoleAdmin, AccessToken)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
}
