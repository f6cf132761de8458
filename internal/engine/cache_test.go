package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/loqalabs/loqa-speech/internal/voice"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeVoice(t *testing.T, dir, id string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, id+".onnx"), []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}
	sidecar := `{"audio":{"sample_rate":22050}}`
	if err := os.WriteFile(filepath.Join(dir, id+".onnx.json"), []byte(sidecar), 0o644); err != nil {
		t.Fatal(err)
	}
}

type countingEngine struct {
	id string
}

func (countingEngine) Synthesize(context.Context, []int64) ([]float32, error) {
	return nil, nil
}

func TestGetCachesEngine(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "en_US-amy-low")

	var calls atomic.Int64
	factory := func(d *voice.Descriptor) (Engine, error) {
		calls.Add(1)
		return &countingEngine{id: d.ID}, nil
	}
	cache := NewCache(tmp, factory, newLogger())

	first, err := cache.Get("en_US-amy-low")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := cache.Get("en_US-amy-low")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first != second {
		t.Fatal("expected the same shared engine instance")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 construction, got %d", calls.Load())
	}
	if cache.Size() != 1 {
		t.Fatalf("expected 1 cached engine, got %d", cache.Size())
	}
}

func TestGetIsolatesVoices(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "en_US-amy-low")
	writeVoice(t, tmp, "en_GB-alba-medium")

	factory := func(d *voice.Descriptor) (Engine, error) {
		return &countingEngine{id: d.ID}, nil
	}
	cache := NewCache(tmp, factory, newLogger())

	a, err := cache.Get("en_US-amy-low")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, err := cache.Get("en_GB-alba-medium")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct engines per voice")
	}
	if a.(*countingEngine).id != "en_US-amy-low" || b.(*countingEngine).id != "en_GB-alba-medium" {
		t.Fatal("engine constructed for the wrong voice")
	}
}

func TestConcurrentFirstRequestsShareOneConstruction(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "en_US-amy-low")

	var calls atomic.Int64
	release := make(chan struct{})
	factory := func(d *voice.Descriptor) (Engine, error) {
		calls.Add(1)
		<-release
		return &countingEngine{id: d.ID}, nil
	}
	cache := NewCache(tmp, factory, newLogger())

	const workers = 8
	results := make([]Engine, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			eng, err := cache.Get("en_US-amy-low")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			results[i] = eng
		}(i)
	}
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected single construction under concurrency, got %d", calls.Load())
	}
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("expected all callers to share one engine")
		}
	}
}

func TestConstructionFailureNotCached(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "en_US-amy-low")

	var calls atomic.Int64
	boom := errors.New("model corrupt")
	factory := func(d *voice.Descriptor) (Engine, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return &countingEngine{id: d.ID}, nil
	}
	cache := NewCache(tmp, factory, newLogger())

	if _, err := cache.Get("en_US-amy-low"); !errors.Is(err, boom) {
		t.Fatalf("expected construction error, got %v", err)
	}
	if _, err := cache.Get("en_US-amy-low"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 constructions, got %d", calls.Load())
	}
}

func TestGetUnknownVoice(t *testing.T) {
	cache := NewCache(t.TempDir(), NewMockFactory(), newLogger())
	_, err := cache.Get("ghost")
	var nf *voice.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
