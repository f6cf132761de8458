package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loqalabs/loqa-speech/internal/voice"
)

// Cache owns lazily constructed synthesis engines keyed by voice ID for
// the lifetime of the process. A voice's engine is constructed at most
// once: concurrent first requests share a single in-flight construction,
// and cache hits never block on each other. Construction failures are not
// cached, so a later request retries.
type Cache struct {
	voicesDir string
	factory   Factory
	log       *slog.Logger

	mu       sync.RWMutex
	engines  map[string]Engine
	inflight map[string]*inflightLoad
}

type inflightLoad struct {
	done   chan struct{}
	engine Engine
	err    error
}

func NewCache(voicesDir string, factory Factory, log *slog.Logger) *Cache {
	return &Cache{
		voicesDir: voicesDir,
		factory:   factory,
		log:       log.With(slog.String("component", "engine-cache")),
		engines:   make(map[string]Engine),
		inflight:  make(map[string]*inflightLoad),
	}
}

// Get returns the shared engine for a voice, constructing it on first use.
// Descriptor load errors pass through unwrapped so callers can distinguish
// a missing voice from a failed engine load.
func (c *Cache) Get(voiceID string) (Engine, error) {
	c.mu.RLock()
	if eng, ok := c.engines[voiceID]; ok {
		c.mu.RUnlock()
		return eng, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	if eng, ok := c.engines[voiceID]; ok {
		c.mu.Unlock()
		return eng, nil
	}
	if load, ok := c.inflight[voiceID]; ok {
		c.mu.Unlock()
		<-load.done
		return load.engine, load.err
	}
	load := &inflightLoad{done: make(chan struct{})}
	c.inflight[voiceID] = load
	c.mu.Unlock()

	eng, err := c.construct(voiceID)
	load.engine, load.err = eng, err

	c.mu.Lock()
	delete(c.inflight, voiceID)
	if err == nil {
		c.engines[voiceID] = eng
	}
	c.mu.Unlock()
	close(load.done)

	return eng, err
}

func (c *Cache) construct(voiceID string) (Engine, error) {
	d, err := voice.Load(c.voicesDir, voiceID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	eng, err := c.factory(d)
	if err != nil {
		return nil, fmt.Errorf("load engine for voice %q: %w", voiceID, err)
	}
	c.log.Info("synthesis engine loaded",
		slog.String("voice", voiceID),
		slog.Duration("elapsed", time.Since(start)))
	return eng, nil
}

// Size reports the number of cached engines.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.engines)
}
