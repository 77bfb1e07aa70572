package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/unifiedui/arango-client/internal/services/validation"
)

// MockValidator is a mock implementation of validation.Validator.
type MockValidator struct {
	mock.Mock
}

// Valid reports whether the query parses.
func (m *MockValidator) Valid(ctx context.Context, aql string) (bool, error) {
	args := m.Called(ctx, aql)
	return args.Bool(0), args.Error(1)
}

// MockValidationService is a mock implementation of validation.Service.
type MockValidationService struct {
	mock.Mock
}

// Validate validates a query.
func (m *MockValidationService) Validate(ctx context.Context, aql string) (*validation.Result, error) {
	args := m.Called(ctx, aql)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*validation.Result), args.Error(1)
}

// Invalidate drops cached answers.
func (m *MockValidationService) Invalidate(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
