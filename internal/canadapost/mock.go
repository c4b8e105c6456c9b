package canadapost

import (
	"context"
	"sync"

	"github.com/dukerupert/addresscomplete/internal/address"
)

// MockProvider is a test implementation of Provider. It is safe for
// concurrent use, since the search controller calls it from goroutines.
type MockProvider struct {
	FindFunc func(ctx context.Context, params FindParams) ([]address.RawSuggestion, error)

	mu    sync.Mutex
	calls []FindParams
}

// NewMockProvider creates a new mock provider for testing.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Find records the call and delegates to FindFunc, or returns no suggestions.
func (m *MockProvider) Find(ctx context.Context, params FindParams) ([]address.RawSuggestion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	fn := m.FindFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, params)
	}
	return []address.RawSuggestion{}, nil
}

// Calls returns a copy of the recorded calls in order.
func (m *MockProvider) Calls() []FindParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FindParams(nil), m.calls...)
}
