// Package dotenv provides a dotenv-based vault implementation for development.
package dotenv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const scheme = "dotenv"

// Vault implements the vault.Vault interface using environment variables,
// an optional env file and an in-memory store, looked up in that order.
type Vault struct {
	file    map[string]string
	secrets map[string]string
	mu      sync.RWMutex
}

// NewVault creates a vault. envFile may be empty; a missing file is an error.
func NewVault(envFile string) (*Vault, error) {
	v := &Vault{
		file:    map[string]string{},
		secrets: map[string]string{},
	}

	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		v.file = values
	}

	return v, nil
}

// Scheme returns "dotenv".
func (v *Vault) Scheme() string {
	return scheme
}

// StoreSecret stores a secret in memory and returns "dotenv://{key}".
func (v *Vault) StoreSecret(ctx context.Context, key string, value string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("secret key is required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.secrets[key] = value
	return fmt.Sprintf("%s://%s", scheme, key), nil
}

// GetSecret retrieves a secret by reference or bare key.
func (v *Vault) GetSecret(ctx context.Context, uri string) (string, error) {
	key := strings.TrimPrefix(uri, scheme+"://")

	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	if value, ok := v.file[key]; ok && value != "" {
		return value, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if value, ok := v.secrets[key]; ok {
		return value, nil
	}

	return "", fmt.Errorf("secret not found: %s", key)
}

// Ping always succeeds.
func (v *Vault) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (v *Vault) Close() error {
	return nil
}
