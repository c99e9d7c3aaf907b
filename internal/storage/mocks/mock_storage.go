package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finvoapi/internal/storage"
)

type MockArchive struct {
	mock.Mock
}

var _ storage.Archive = (*MockArchive)(nil)

func (m *MockArchive) Store(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	args := m.Called(ctx, key, data, contentType, metadata)
	return args.Error(0)
}
