// Package token issues and verifies the signed session tokens that carry a
// Principal between requests. Tokens are stateless: there is no server-side
// revocation list, so a stolen token stays valid until its expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskflow-server/internal/domain"
)

var (
	// ErrExpired marks a well-formed token whose expiry has passed. Callers
	// use it to prompt re-login instead of treating the caller as hostile.
	ErrExpired = errors.New("token expired")
	// ErrInvalid marks a token that fails signature or shape validation.
	ErrInvalid = errors.New("token invalid")
)

// Claims embeds the principal fields next to the registered JWT claims.
// The principal id travels in the subject.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a shared HMAC secret and a
// fixed expiry horizon.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a manager. ttl is the sliding-session horizon applied to
// every signed token.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign embeds the principal and the expiry horizon into a fresh token.
func (m *Manager) Sign(p domain.Principal) (string, error) {
	now := m.now()
	claims := Claims{
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify validates signature and expiry and returns the embedded principal.
// Expired and malformed tokens yield distinct errors, never conflated.
func (m *Manager) Verify(raw string) (domain.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, ErrExpired
		}
		return domain.Principal{}, ErrInvalid
	}

	p := domain.Principal{ID: claims.Subject, Email: claims.Email, Role: claims.Role}
	if p.ID == "" || !domain.ValidRole(p.Role) {
		return domain.Principal{}, ErrInvalid
	}
	return p, nil
}
