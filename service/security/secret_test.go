package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcrypt(t *testing.T) {
	password := "super-secret-password"

	hashed, err := BcryptHash(password)
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	require.NotEqual(t, password, hashed)

	require.True(t, BcryptCompare(hashed, password))
	require.False(t, BcryptCompare(hashed, "wrong-password"))
}
