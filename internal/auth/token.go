package auth

import (
	"fmt"
	"time"

	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "admin_session"
	issuer     = "culture-china-admin"
)

type sessionClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("admin session secret is not configured")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a session for p and returns the token with its expiry.
func (t *Tokens) Issue(p Principal) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := sessionClaims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expires, nil
}

// Parse validates signature, issuer and expiry. Every failure is ErrUnauthenticated.
func (t *Tokens) Parse(token string) (Principal, error) {
	if token == "" {
		return Principal{}, errors.ErrUnauthenticated
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	if !claims.Role.Valid() || claims.Subject == "" {
		return Principal{}, errors.ErrUnauthenticated
	}

	return Principal{
		Username:  claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
