package phonemizer

import "context"

// Phonemizer turns plain text into a phonetic transcription for a
// language. Implementations may block on subprocess execution.
type Phonemizer interface {
	Phonemize(ctx context.Context, text, language string) (string, error)
}
