package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		hours   int
		wantErr string
	}{
		{"default expiration", map[string]string{"JWT_SECRET": "s"}, 24, ""},
		{"custom expiration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION_HOURS": "48"}, 48, ""},
		{"missing secret", map[string]string{}, 0, "JWT_SECRET is required"},
		{"non-numeric expiration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION_HOURS": "day"}, 0, "invalid JWT_EXPIRATION_HOURS"},
		{"zero expiration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION_HOURS": "0"}, 0, "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewJWTConfig(env(tt.vars))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hours, cfg.ExpirationHours)
			assert.Equal(t, time.Duration(tt.hours)*time.Hour, cfg.Expiration())
		})
	}
}

func TestNewPasswordConfig(t *testing.T) {
	cfg, err := NewPasswordConfig(env(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cfg.BcryptCost)
	assert.Empty(t, cfg.Pepper)

	_, err = NewPasswordConfig(env(map[string]string{"BCRYPT_COST": "4"}))
	assert.ErrorContains(t, err, "out of range")

	_, err = NewPasswordConfig(env(map[string]string{"BCRYPT_COST": "high"}))
	assert.ErrorContains(t, err, "invalid BCRYPT_COST")
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))

	noPepper := &PasswordConfig{BcryptCost: 10}
	assert.False(t, noPepper.VerifyPassword("correct horse", hash), "pepper is part of the hash input")
}
