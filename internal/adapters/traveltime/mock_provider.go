package traveltime

import (
	"context"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"sync"
)

type MockPair struct {
	From, To     domain.Coordinates
	Seconds      int
	Instructions string
}

// MockProvider serves fixed travel times. Pairs without an entry use Uniform
// when it is positive and fail otherwise. Err, when set, fails every call.
type MockProvider struct {
	m       map[string]ports.TravelTimeResult
	Uniform int
	Err     error

	mu    sync.Mutex
	calls int
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]ports.TravelTimeResult, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = ports.TravelTimeResult{
			DurationSeconds: p.Seconds,
			Instructions:    p.Instructions,
		}
	}
	return &MockProvider{m: m}
}

func NewUniformMockProvider(seconds int) *MockProvider {
	p := NewMockProvider(nil)
	p.Uniform = seconds
	return p
}

func (p *MockProvider) TravelTime(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	mode domain.TravelMode,
) (ports.TravelTimeResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.Err != nil {
		return ports.TravelTimeResult{}, p.Err
	}

	r, ok := p.m[origin.Key()+"|"+destination.Key()]
	if ok {
		return r, nil
	}
	if p.Uniform > 0 {
		return ports.TravelTimeResult{DurationSeconds: p.Uniform}, nil
	}

	return ports.TravelTimeResult{}, fmt.Errorf("missing pair %s -> %s", origin.Key(), destination.Key())
}

func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
