package busfront

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/loqalabs/loqa-speech/internal/bus"
	"github.com/loqalabs/loqa-speech/internal/protocol"
	"github.com/loqalabs/loqa-speech/internal/speech"
)

// Service exposes synthesis over the message bus: it subscribes to
// synthesize requests and publishes results to the requester's reply
// subject, or the shared result subject when none is given.
type Service struct {
	bus    *bus.Client
	speech *speech.Service
	sub    *nats.Subscription
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

func NewService(parent context.Context, busClient *bus.Client, sp *speech.Service, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	return &Service{
		bus:    busClient,
		speech: sp,
		ctx:    ctx,
		cancel: cancel,
		logger: log.With(slog.String("component", "bus-front")),
	}
}

func (s *Service) Start() error {
	sub, err := s.bus.Subscribe(protocol.SubjectSynthesizeRequest, s.handleRequest)
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

func (s *Service) Close() {
	s.cancel()
	if s.sub != nil {
		_ = s.sub.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool { return s.sub != nil && s.bus.Healthy() }

func (s *Service) handleRequest(msg *nats.Msg) {
	var req protocol.SynthesizeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("failed to decode synthesize request", slogError(err))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		wav, err := s.speech.Speak(s.ctx, req.Text, req.Voice)

		result := protocol.SynthesizeResult{
			RequestID: req.RequestID,
			Voice:     req.Voice,
			Timestamp: time.Now().UTC(),
		}
		if err != nil {
			coded := speech.AsError(err)
			result.Code = coded.Code
			result.Error = coded.Message
		} else {
			result.WAVBase64 = base64.StdEncoding.EncodeToString(wav)
		}
		s.publishResult(req, result)
	}()
}

func (s *Service) publishResult(req protocol.SynthesizeRequest, result protocol.SynthesizeResult) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to marshal synthesize result", slogError(err))
		return
	}
	subject := req.ReplyTo
	if subject == "" {
		subject = protocol.SubjectSynthesizeResult
	}
	if err := s.bus.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish synthesize result", slogError(err))
	}
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
