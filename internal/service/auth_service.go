package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"nottebuia/internal/model"
)

// ErrInvalidToken means a presented session token failed verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService verifies session tokens minted by the external auth
// provider. The core's only interest in a verified session is the opaque
// account reference inside it; everything else about identity lives
// outside this service.
type AuthService struct {
	secret []byte
}

// NewAuthService creates an auth service sharing the provider's HMAC secret.
func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

// ValidateSessionToken verifies the token and returns the account
// reference it carries.
func (s *AuthService) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.AccountRef, nil
}
