package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finvoapi/internal/model"
	"finvoapi/internal/service"
)

type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, raw []byte, filename string, opts model.ExtractionOptions) (*model.ResponseEnvelope, error) {
	args := m.Called(ctx, raw, filename, opts)
	var env *model.ResponseEnvelope
	if v := args.Get(0); v != nil {
		env = v.(*model.ResponseEnvelope)
	}
	return env, args.Error(1)
}

func (m *MockExtractionService) Stats() service.Stats {
	args := m.Called()
	return args.Get(0).(service.Stats)
}
