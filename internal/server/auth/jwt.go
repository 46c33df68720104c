// Package auth issues and validates owner-session tokens. Capability links
// authorize clients; the creator surface (project list, project creation) is
// instead gated by a short-lived signed token so the "owner bypass" is an
// explicit, auditable path rather than an unchecked one.
package auth

import (
	"errors"
	"time"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const ownerSubject = "owner"

type Claims struct {
	jwt.RegisteredClaims
}

// GenerateOwnerToken mints a signed owner-session token.
func GenerateOwnerToken(secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerSubject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateOwnerToken checks signature, expiry and subject.
func ValidateOwnerToken(tokenString string, secretKey []byte) error {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject != ownerSubject {
		return common.ErrInvalidToken
	}

	return nil
}
