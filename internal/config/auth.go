package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Defaults for token and password settings.
const (
	DefaultJWTExpirationHours = 24
	DefaultBcryptCost         = 12
)

// JWTConfig holds the signing secret and lifetime of session tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS.
// A nil getenv uses os.Getenv.
func NewJWTConfig(getenv func(string) string) (*JWTConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &JWTConfig{
		Secret:          getenv("JWT_SECRET"),
		ExpirationHours: DefaultJWTExpirationHours,
	}
	if v := getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		cfg.ExpirationHours = hours
	}

	if cfg.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if cfg.ExpirationHours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", cfg.ExpirationHours)
	}
	return cfg, nil
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// PasswordConfig controls password hashing.
type PasswordConfig struct {
	BcryptCost int
	// Pepper is an optional global secret appended before hashing.
	Pepper string
}

// NewPasswordConfig reads BCRYPT_COST (10-14) and PASSWORD_PEPPER.
// A nil getenv uses os.Getenv.
func NewPasswordConfig(getenv func(string) string) (*PasswordConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &PasswordConfig{BcryptCost: DefaultBcryptCost, Pepper: getenv("PASSWORD_PEPPER")}
	if v := getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cfg.BcryptCost = cost
	}
	if cfg.BcryptCost < 10 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cfg.BcryptCost)
	}
	return cfg, nil
}

// HashPassword hashes pw with bcrypt.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}
