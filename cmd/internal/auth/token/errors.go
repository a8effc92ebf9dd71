package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrInvalidToken covers every verification failure: absent, malformed,
	// badly signed, wrong algorithm, or expired tokens. Callers must not be
	// able to distinguish the cases.
	ErrInvalidToken = errors.New("invalid token")

	ErrSecretMissing  = errors.New("token signing secret missing")
	ErrSecretTooShort = errors.New("token signing secret too short")
)
