package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyConfig holds the bcrypt hash of the API key clients exchange for a
// bearer token, and the cost used when hashing new keys.
type APIKeyConfig struct {
	Hash       string
	BcryptCost int
}

// NewAPIKeyConfig creates an API key configuration from environment variables.
// It reads API_KEY_HASH (required) and BCRYPT_COST (default: 12).
func NewAPIKeyConfig() (*APIKeyConfig, error) {
	hash := os.Getenv("API_KEY_HASH")
	if hash == "" {
		return nil, fmt.Errorf("API_KEY_HASH is required but not set")
	}

	cost, err := bcryptCostFromEnv()
	if err != nil {
		return nil, err
	}

	config := &APIKeyConfig{Hash: hash, BcryptCost: cost}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *APIKeyConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if _, err := bcrypt.Cost([]byte(c.Hash)); err != nil {
		return fmt.Errorf("API_KEY_HASH is not a bcrypt hash: %w", err)
	}
	return nil
}

// Verify reports whether key matches the configured hash.
func (c *APIKeyConfig) Verify(key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Hash), []byte(key)) == nil
}

// HashAPIKey hashes key with the cost from BCRYPT_COST, for use as
// API_KEY_HASH.
func HashAPIKey(key string) (string, error) {
	if len(key) < 8 {
		return "", fmt.Errorf("API key must be at least 8 characters")
	}
	cost, err := bcryptCostFromEnv()
	if err != nil {
		return "", err
	}
	if cost < 10 || cost > 14 {
		return "", fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}

func bcryptCostFromEnv() (int, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12"
	}
	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return 0, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}
	return cost, nil
}
