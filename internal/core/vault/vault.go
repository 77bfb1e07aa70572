// Package vault defines secret lookup for configuration values that hold
// references such as dotenv://ARANGO_ROOT_PASSWORD instead of literals.
package vault

import (
	"context"
	"fmt"
	"strings"
)

// Type represents the type of vault.
type Type string

const (
	// TypeDotEnv represents a DotEnv vault (for development).
	TypeDotEnv Type = "dotenv"
)

// Vault defines the interface for secret operations.
type Vault interface {
	// Scheme returns the reference scheme this vault serves, e.g. "dotenv".
	Scheme() string

	// StoreSecret stores a secret and returns its reference.
	StoreSecret(ctx context.Context, key string, value string) (string, error)

	// GetSecret retrieves a secret by reference.
	GetSecret(ctx context.Context, uri string) (string, error)

	// Ping checks if the vault is reachable.
	Ping(ctx context.Context) error

	// Close releases vault resources.
	Close() error
}

// IsReference reports whether value is a secret reference served by v.
func IsReference(v Vault, value string) bool {
	return strings.HasPrefix(value, v.Scheme()+"://")
}

// Resolve returns value unchanged unless it is a reference, in which case
// the referenced secret is returned.
func Resolve(ctx context.Context, v Vault, value string) (string, error) {
	if v == nil || !IsReference(v, value) {
		return value, nil
	}

	secret, err := v.GetSecret(ctx, value)
	if err != nil {
		return "", fmt.Errorf("failed to resolve secret reference: %w", err)
	}
	return secret, nil
}
