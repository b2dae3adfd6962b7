package credential

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaque is returned by Inspect when the token is not a readable JWT.
var ErrOpaque = errors.New("token is opaque")

// Claims is what Inspect can tell about a token without the server's key.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero if the token carries no exp
}

// Expired reports whether the token's exp lies before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes c as a JWT without verifying its signature.
// The result is for display only; the server remains the authority on validity.
func Inspect(c Credential) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(c.Value, &rc); err != nil {
		return Claims{}, ErrOpaque
	}

	claims := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims, nil
}
