package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tasky/model"
)

const tokenIssuer = "tasky"

// CreateAccessToken signs an HS256 access token. The auth service issues the
// real tokens; this is used by the token command and by tests.
func CreateAccessToken(secret []byte, userID, role string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := &model.AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
