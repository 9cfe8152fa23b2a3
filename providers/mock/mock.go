// Package mock provides a testify mock of the embedding provider.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// EmbeddingProvider is a mock implementation of types.EmbeddingProvider.
type EmbeddingProvider struct {
	mock.Mock
}

func (m *EmbeddingProvider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *EmbeddingProvider) Close() {}
