package fakeapi

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// Claims carries the customer id alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	CustomerID string `json:"customerId"`
}

// GenerateToken mints an HS256 token for customerID valid for ttl. A negative
// ttl yields an already expired token.
func GenerateToken(customerID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		CustomerID: customerID,
	})
	return token.SignedString(secret)
}

// CustomerIDFromToken validates the signature and expiry and returns the
// customer id.
func CustomerIDFromToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.CustomerID == "" {
		return "", errInvalidToken
	}
	return claims.CustomerID, nil
}
