package engine

import (
	"context"
	"runtime"
	"testing"

	"github.com/loqalabs/loqa-speech/internal/voice"
)

func TestNewExecFactoryRejectsEmptyCommand(t *testing.T) {
	if _, err := NewExecFactory(""); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestExecEngineRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	// Fake runner: drain the request, answer with one sample (1.0 as
	// little-endian float32, base64 AACAPw==).
	factory, err := NewExecFactory(`/bin/sh -c 'cat >/dev/null; printf "{\"samples_base64\":\"AACAPw==\"}"'`)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	eng, err := factory(&voice.Descriptor{ID: "test", ModelPath: "test.onnx"})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	samples, err := eng.Synthesize(context.Background(), []int64{0, 1, 0})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(samples) != 1 || samples[0] != 1.0 {
		t.Fatalf("unexpected samples: %v", samples)
	}
}

func TestExecEngineEmptyInput(t *testing.T) {
	factory, err := NewExecFactory("false")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	eng, err := factory(&voice.Descriptor{ID: "test"})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	// No IDs means no subprocess run and no samples.
	samples, err := eng.Synthesize(context.Background(), nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(samples) != 0 {
		t.Fatalf("expected no samples, got %v", samples)
	}
}
