package phonemizer

import "context"

type mockPhonemizer struct {
	err error
}

// NewMock returns a phonemizer that echoes its input as the
// transcription, or always fails with err when err is non-nil.
func NewMock(err error) Phonemizer {
	return &mockPhonemizer{err: err}
}

func (m *mockPhonemizer) Phonemize(_ context.Context, text, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return text, nil
}
