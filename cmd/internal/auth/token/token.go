package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity envelope embedded in a token.
type Claims struct {
	UserID string
	Email  string
}

// wireClaims is the JWT payload shape. The json keys ("id", "email") are
// part of the wire contract and must not change.
type wireClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256-signed identity tokens.
// Each call is a pure function of (token, secret, clock); nothing is persisted.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager from config. The secret must be present;
// callers are expected to have validated length via LoadConfigFromEnv.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretMissing
	}
	return &Manager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the given user. With TTL disabled the token
// carries no expiry claim and never expires.
func (m *Manager) Issue(userID, email string) (string, error) {
	claims := wireClaims{
		UserID: userID,
		Email:  email,
	}
	if m.ttl > 0 {
		now := m.now().UTC()
		claims.RegisteredClaims = jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		}
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.secret)
}

// Verify decodes and validates a presented token.
// Failures are indistinguishable: any absent, malformed, tampered,
// wrong-algorithm, or expired token yields ErrInvalidToken.
func (m *Manager) Verify(tokenStr string) (Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &wireClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return m.now().UTC() }),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	wc, ok := parsed.Claims.(*wireClaims)
	if !ok || wc.UserID == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: wc.UserID, Email: wc.Email}, nil
}
