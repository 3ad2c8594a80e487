// ABOUTME: Decodes the claims carried by the session's bearer token
// ABOUTME: Reads JWT payloads without verifying the signature

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when the bearer token is not a JWT
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims are the fields of interest in a login-check token
type Claims struct {
	Subject   string    `json:"subject,omitempty"`
	Username  string    `json:"username,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenClaims decodes the current token. The signature is not checked: the
// server remains the authority, this is for display only.
func (m *Manager) TokenClaims() (*Claims, error) {
	token := m.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return ParseClaims(token)
}

// ParseClaims decodes the claims of a JWT without verification
func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	c := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if username, ok := mc["username"].(string); ok {
		c.Username = username
	}
	if roles, ok := mc["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				c.Roles = append(c.Roles, s)
			}
		}
	}
	return c, nil
}
