// Package validation answers "is this AQL query valid?" and remembers the
// answer in a cache so repeated checks skip the server round trip.
package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/unifiedui/arango-client/internal/core/cache"
)

const (
	// DefaultTTL is how long a validation result is cached.
	DefaultTTL = 10 * time.Minute

	// KeyPrefix prefixes every cache key written by the service.
	KeyPrefix = "aql:valid:"

	valueValid   = "1"
	valueInvalid = "0"
)

// Validator asks the server whether a query parses. *arango.Query implements it.
type Validator interface {
	Valid(ctx context.Context, aql string) (bool, error)
}

// Result is the outcome of one validation.
type Result struct {
	Valid  bool
	Cached bool
}

// Service validates queries with a cache in front of the server.
type Service interface {
	// Validate returns whether aql is valid and whether the answer came from the cache.
	Validate(ctx context.Context, aql string) (*Result, error)

	// Invalidate drops every cached answer.
	Invalidate(ctx context.Context) (int64, error)
}

// Config holds the configuration for the validation service.
type Config struct {
	Validator Validator
	// Cache may be nil to disable caching.
	Cache  cache.Cache
	TTL    time.Duration
	Logger *zerolog.Logger
}

type service struct {
	validator Validator
	cache     cache.Cache
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewService creates a new validation service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Validator == nil {
		return nil, fmt.Errorf("validator is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &service{
		validator: cfg.Validator,
		cache:     cfg.Cache,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// CacheKey returns the cache key for a query. Surrounding whitespace does not
// change the key.
func CacheKey(aql string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(aql)))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

func (s *service) Validate(ctx context.Context, aql string) (*Result, error) {
	key := CacheKey(aql)

	if s.cache != nil {
		value, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("key", key).Msg("validation cache read failed")
		case string(value) == valueValid:
			return &Result{Valid: true, Cached: true}, nil
		case string(value) == valueInvalid:
			return &Result{Valid: false, Cached: true}, nil
		}
	}

	valid, err := s.validator.Valid(ctx, aql)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		value := valueInvalid
		if valid {
			value = valueValid
		}
		if err := s.cache.Set(ctx, key, []byte(value), s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("validation cache write failed")
		}
	}

	return &Result{Valid: valid}, nil
}

func (s *service) Invalidate(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	n, err := s.cache.DeletePattern(ctx, KeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate validation cache: %w", err)
	}
	return n, nil
}
