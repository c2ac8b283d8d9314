package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	// Ephemeral is set when no secret was configured and one was generated for this process.
	Ephemeral bool
}

// JWT builds the token configuration. Without a configured secret a random one is
// generated, so issued tokens stop validating after a restart.
func (a AuthConfig) JWT() (*JWTConfig, error) {
	c := &JWTConfig{Secret: a.JWTSecret, ExpirationHours: a.JWTExpirationHours}
	if c.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		c.Secret = hex.EncodeToString(buf)
		c.Ephemeral = true
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *JWTConfig) normalize() error {
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
