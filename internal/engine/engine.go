package engine

import (
	"context"

	"github.com/loqalabs/loqa-speech/internal/voice"
)

// Engine turns phoneme IDs into audio samples for one voice. Engines are
// shared read-only across requests; implementations must either tolerate
// concurrent Synthesize calls or serialize them internally.
type Engine interface {
	Synthesize(ctx context.Context, ids []int64) ([]float32, error)
}

// Factory constructs an engine from a loaded voice descriptor.
// Construction is expensive (model deserialization) and runs outside the
// cache lock.
type Factory func(d *voice.Descriptor) (Engine, error)
