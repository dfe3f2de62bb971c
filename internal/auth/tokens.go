// Package auth issues and verifies the HMAC-signed bearer tokens used by
// the CRUD API, and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenService signs and verifies access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service with the given signing secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
	}, nil
}

// Issue creates a signed token for the given user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.AccessClaims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify validates a token string and extracts its claims.
// Returns domain.ErrForbidden for invalid, expired, or mis-signed tokens.
func (s *TokenService) Verify(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Prevent algorithm confusion attacks - HMAC only
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, domain.ErrForbidden
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrForbidden
	}

	if claims.Subject == "" {
		return nil, domain.ErrForbidden
	}

	return claims, nil
}
