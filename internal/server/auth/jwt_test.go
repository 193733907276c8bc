package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = models.Identity{UserID: "user-123", Username: "alice"}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken(alice, secret, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, alice, *got)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(alice, secret, -1*time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
	assert.True(t, errors.Is(err, common.ErrTokenExpired))
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(alice, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.NotErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"", "abc", "a.b.c", strings.Repeat("x", 64)} {
		_, err := ParseToken(tok, []byte("k"))
		assert.ErrorIs(t, err, common.ErrInvalidToken, tok)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
		Username:         "alice",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RequiresIdentity(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(models.Identity{UserID: "u1"}, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RequiresExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1", Username: "alice"}).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
