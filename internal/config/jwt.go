package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-enhancer/internal/secrets"
)

// DefaultJWTExpirationHours is the session token lifetime when JWT_EXPIRATION_HOURS is unset
const DefaultJWTExpirationHours = 24

// JWTConfig holds the signing key and lifetime of session tokens
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET_FILE or JWT_SECRET (one is required) and
// JWT_EXPIRATION_HOURS (default 24) from the environment
func NewJWTConfig() (*JWTConfig, error) {
	return jwtConfigFrom(os.Getenv)
}

func jwtConfigFrom(getenv func(string) string) (*JWTConfig, error) {
	secret, err := secrets.Load(secrets.Source{
		Name:  "JWT_SECRET",
		Value: getenv("JWT_SECRET"),
		File:  getenv("JWT_SECRET_FILE"),
	})
	if err != nil {
		return nil, fmt.Errorf("session tokens need a signing key: %w", err)
	}

	hours := DefaultJWTExpirationHours
	if raw := strings.TrimSpace(getenv("JWT_EXPIRATION_HOURS")); raw != "" {
		hours, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS %q: %w", raw, err)
		}
		if hours < 1 {
			return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", hours)
		}
	}

	return &JWTConfig{Secret: secret, ExpirationHours: hours}, nil
}

// Expiration returns the token lifetime
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
