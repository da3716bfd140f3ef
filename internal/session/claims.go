package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RealmAccess holds the realm level roles granted to the principal
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// Claims are the identity provider assertions carried by the access token
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string      `json:"preferred_username,omitempty"`
	Email             string      `json:"email,omitempty"`
	RealmAccess       RealmAccess `json:"realm_access"`
}

// ParseClaims decodes the claims of an access token without verifying its signature.
// The token is only ever received directly from the token endpoint and the services
// verify it on every call.
func ParseClaims(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("failed to parse access token claims: %w", err)
	}
	return claims, nil
}

// Roles returns the realm roles
func (c Claims) Roles() []string {
	return c.RealmAccess.Roles
}

// HasRole checks if the claims contain a specific role
func (c Claims) HasRole(role string) bool {
	for _, r := range c.RealmAccess.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Expiry returns when the token expires. The second value is false if the token carries no expiry.
func (c Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}
