package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finvoapi/internal/document"
)

type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, payload *document.Payload, instructions string, schema map[string]any) (string, error) {
	args := m.Called(ctx, payload, instructions, schema)
	return args.String(0), args.Error(1)
}
