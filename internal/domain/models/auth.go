package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the claims embedded in tokens issued by /users/login
// and /users/register.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim, which carries the user ID.
func (c *AccessClaims) UserID() string {
	return c.Subject
}
