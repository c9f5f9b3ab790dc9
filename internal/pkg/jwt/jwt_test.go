package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestGenerateToken(t *testing.T) {
	t.Run("generate valid token", func(t *testing.T) {
		userID := int64(123)
		token, err := GenerateToken(userID, testSecret, 24)

		require.NoError(t, err)
		assert.NotEmpty(t, token)

		// Token should be parseable
		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("generate token with different user IDs", func(t *testing.T) {
		token1, err := GenerateToken(1, testSecret, 24)
		require.NoError(t, err)

		token2, err := GenerateToken(2, testSecret, 24)
		require.NoError(t, err)

		// Different users should have different tokens
		assert.NotEqual(t, token1, token2)
	})

	t.Run("generate token with zero user ID", func(t *testing.T) {
		token, err := GenerateToken(0, testSecret, 24)

		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, int64(0), claims.UserID)
	})
}

func TestParseToken(t *testing.T) {
	t.Run("parse valid token", func(t *testing.T) {
		token, err := GenerateToken(42, testSecret, 24)
		require.NoError(t, err)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.True(t, claims.ExpiresAt.After(time.Now()))
	})

	t.Run("parse with wrong secret", func(t *testing.T) {
		token, err := GenerateToken(42, testSecret, 24)
		require.NoError(t, err)

		claims, err := ParseToken(token, "wrong-secret")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("parse garbage token", func(t *testing.T) {
		claims, err := ParseToken("not-a-token", testSecret)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("parse expired token", func(t *testing.T) {
		// Build an already-expired token by hand
		claims := &Claims{
			UserID: 7,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		parsed, err := ParseToken(signed, testSecret)
		assert.Error(t, err)
		assert.Nil(t, parsed)
	})
}
