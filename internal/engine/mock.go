package engine

import (
	"context"
	"math"

	"github.com/loqalabs/loqa-speech/internal/voice"
)

const mockSamplesPerID = 128

type mockEngine struct{}

// NewMockFactory returns a Factory producing deterministic engines for
// development and tests: each phoneme ID contributes a fixed-length tone
// burst whose amplitude derives from the ID.
func NewMockFactory() Factory {
	return func(_ *voice.Descriptor) (Engine, error) {
		return mockEngine{}, nil
	}
}

func (mockEngine) Synthesize(_ context.Context, ids []int64) ([]float32, error) {
	samples := make([]float32, 0, len(ids)*mockSamplesPerID)
	for _, id := range ids {
		amp := float64(id%16) / 16
		for i := 0; i < mockSamplesPerID; i++ {
			samples = append(samples, float32(amp*math.Sin(2*math.Pi*float64(i)/32)))
		}
	}
	return samples, nil
}
