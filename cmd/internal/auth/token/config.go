package token

import (
	"os"
	"strings"
	"time"
)

const (
	// SecretEnvKey is the env var name for the token signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "TASKD_TOKEN_SECRET"

	ttlEnvKey = "TASKD_TOKEN_TTL"

	// minSecretBytes is the minimum accepted HMAC-SHA256 secret length.
	// Measured in bytes (not runes) because the key is used as raw bytes.
	minSecretBytes = 32
)

// Config holds the token manager configuration.
type Config struct {
	// Secret is the process-wide HS256 signing key. Required, min 32 bytes.
	Secret []byte

	// TTL bounds token lifetime. Zero (the default) disables the expiry
	// claim entirely: issued tokens never expire.
	TTL time.Duration
}

// LoadConfigFromEnv loads token config from environment variables.
// The secret is mandatory: startup must fail rather than fall back to a
// key embedded in source.
func LoadConfigFromEnv() (Config, error) {
	secret, err := SecretFromEnv(minSecretBytes)
	if err != nil {
		return Config{}, err
	}

	ttl := time.Duration(0)
	if raw := strings.TrimSpace(os.Getenv(ttlEnvKey)); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			ttl = d
		}
	}

	return Config{Secret: secret, TTL: ttl}, nil
}

// SecretFromEnv returns the configured signing secret (trimmed), enforcing a
// minimum byte length. Missing/blank -> ErrSecretMissing; too short ->
// ErrSecretTooShort.
func SecretFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(SecretEnvKey))
	if raw == "" {
		return nil, ErrSecretMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}
