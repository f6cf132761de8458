package phonemizer

import (
	"context"
	"errors"
	"testing"
)

func TestNewExecRejectsEmptyCommand(t *testing.T) {
	if _, err := NewExec(""); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestNewExecRejectsUnparsableCommand(t *testing.T) {
	if _, err := NewExec(`espeak-ng "unterminated`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestMockEchoesInput(t *testing.T) {
	p := NewMock(nil)
	got, err := p.Phonemize(context.Background(), "hɛloʊ", "en")
	if err != nil {
		t.Fatalf("phonemize: %v", err)
	}
	if got != "hɛloʊ" {
		t.Fatalf("unexpected transcription: %q", got)
	}
}

func TestMockFails(t *testing.T) {
	boom := errors.New("boom")
	p := NewMock(boom)
	if _, err := p.Phonemize(context.Background(), "x", "en"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
}
