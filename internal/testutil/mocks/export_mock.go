package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/unifiedui/arango-client/internal/services/export"
)

// MockExportService is a mock implementation of export.Service.
type MockExportService struct {
	mock.Mock
}

// Export runs an export.
func (m *MockExportService) Export(ctx context.Context, req *export.Request) (*export.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.Result), args.Error(1)
}
