package speech

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/loqalabs/loqa-speech/internal/audio"
	"github.com/loqalabs/loqa-speech/internal/config"
	"github.com/loqalabs/loqa-speech/internal/engine"
	"github.com/loqalabs/loqa-speech/internal/markup"
	"github.com/loqalabs/loqa-speech/internal/phonemizer"
	"github.com/loqalabs/loqa-speech/internal/requestlog"
	"github.com/loqalabs/loqa-speech/internal/voice"
)

// Service is the synthesis orchestrator: markup compilation, phonemizing,
// phoneme encoding, inference, WAV packaging. It owns no global state;
// the engine cache and external collaborators are injected.
type Service struct {
	voicesDir  string
	cache      *engine.Cache
	phonemizer phonemizer.Phonemizer
	reqLog     *requestlog.Store
	logger     *slog.Logger
	sem        chan struct{}
	timeout    time.Duration

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewService(cfg config.SynthesisConfig, voicesDir string, cache *engine.Cache, ph phonemizer.Phonemizer, reqLog *requestlog.Store, log *slog.Logger) *Service {
	s := &Service{
		voicesDir:  voicesDir,
		cache:      cache,
		phonemizer: ph,
		reqLog:     reqLog,
		logger:     log.With(slog.String("component", "speech-service")),
		sem:        make(chan struct{}, cfg.MaxConcurrent),
		timeout:    time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}
	if err := s.initMetrics(); err != nil {
		s.logger.Warn("failed to initialize metrics", slogError(err))
	}
	return s
}

func (s *Service) initMetrics() error {
	meter := otel.Meter("github.com/loqalabs/loqa-speech/speech")
	requests, err := meter.Int64Counter("speech.synthesis.requests",
		metric.WithDescription("Completed synthesis requests by voice and status"))
	if err != nil {
		return err
	}
	duration, err := meter.Float64Histogram("speech.synthesis.duration_seconds",
		metric.WithDescription("End-to-end synthesis duration"))
	if err != nil {
		return err
	}
	s.requests = requests
	s.duration = duration
	return nil
}

// Speak runs the full pipeline for one request and returns WAV container
// bytes. Failures carry a stable code via *Error.
func (s *Service) Speak(ctx context.Context, text, voiceID string) ([]byte, error) {
	if err := ValidateRequest(text, voiceID); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	start := time.Now()
	wav, err := s.speak(ctx, text, voiceID)
	s.record(ctx, requestID, voiceID, text, time.Since(start), err)
	if err != nil {
		return nil, AsError(err)
	}
	return wav, nil
}

func (s *Service) speak(ctx context.Context, text, voiceID string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rendered := markup.Process(text)

	desc, err := voice.Load(s.voicesDir, voiceID)
	if err != nil {
		return nil, err
	}
	eng, err := s.cache.Get(voiceID)
	if err != nil {
		return nil, err
	}

	// Phonemizing and inference block on external work; both hold a
	// worker slot so they cannot starve unrelated requests.
	if err := s.acquire(ctx); err != nil {
		return nil, fmt.Errorf("synthesis queue: %w", err)
	}
	defer s.release()

	phonemes, err := s.phonemizer.Phonemize(ctx, rendered, desc.Language)
	if err != nil {
		return nil, fmt.Errorf("phonemize: %w", err)
	}

	ids := voice.EncodePhonemes(phonemes, desc.PhonemeIDMap)

	samples, err := eng.Synthesize(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	out, err := audio.EncodeWAV(samples, desc.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	return out, nil
}

// ListVoices enumerates discoverable voices in the configured directory.
func (s *Service) ListVoices() ([]voice.Info, error) {
	voices, err := voice.List(s.voicesDir)
	if err != nil {
		return nil, AsError(err)
	}
	return voices, nil
}

func (s *Service) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) release() {
	<-s.sem
}

func (s *Service) record(ctx context.Context, requestID, voiceID, text string, elapsed time.Duration, err error) {
	status := "ok"
	code := ""
	if err != nil {
		status = "error"
		code = AsError(err).Code
	}

	if s.requests != nil {
		attrs := metric.WithAttributes(
			attribute.String("voice", voiceID),
			attribute.String("status", status),
		)
		s.requests.Add(ctx, 1, attrs)
		s.duration.Record(ctx, elapsed.Seconds(), attrs)
	}

	if err != nil {
		s.logger.Warn("synthesis failed",
			slog.String("request_id", requestID),
			slog.String("voice", voiceID),
			slog.String("code", code),
			slogError(err))
	} else {
		s.logger.Info("synthesis complete",
			slog.String("request_id", requestID),
			slog.String("voice", voiceID),
			slog.Duration("elapsed", elapsed))
	}

	if s.reqLog != nil {
		rec := requestlog.Record{
			ID:         requestID,
			Voice:      voiceID,
			TextChars:  utf8.RuneCountInString(text),
			DurationMS: elapsed.Milliseconds(),
			Status:     status,
			ErrorCode:  code,
		}
		if logErr := s.reqLog.Append(ctx, rec); logErr != nil {
			s.logger.Warn("failed to append request log", slogError(logErr))
		}
	}
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
