// Package auth issues and verifies the stateless session tokens that gate
// write operations.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the bearer's identity next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
}

func GenerateToken(identity models.Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:   identity.UserID,
		Username: identity.Username,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies signature and expiry. Expired tokens yield
// common.ErrTokenExpired, anything else common.ErrInvalidToken; both wrap
// into the invalid-token class via errors.Is(err, common.ErrInvalidToken).
func ParseToken(tokenString string, secretKey []byte) (*models.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Join(common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.Username == "" {
		return nil, common.ErrInvalidToken
	}

	return &models.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
