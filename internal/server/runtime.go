package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loqalabs/loqa-speech/internal/bus"
	"github.com/loqalabs/loqa-speech/internal/busfront"
	"github.com/loqalabs/loqa-speech/internal/config"
	"github.com/loqalabs/loqa-speech/internal/engine"
	"github.com/loqalabs/loqa-speech/internal/natsserver"
	"github.com/loqalabs/loqa-speech/internal/phonemizer"
	"github.com/loqalabs/loqa-speech/internal/requestlog"
	"github.com/loqalabs/loqa-speech/internal/speech"
)

// Runtime owns the process lifecycle: telemetry, the synthesis service
// and its collaborators, the HTTP API, and the optional bus frontend.
type Runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	version string

	speech      *speech.Service
	httpServer  *http.Server
	metricsSrv  *http.Server
	tracerClose func(context.Context) error
	ready       atomic.Bool
	wg          sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger, version string) *Runtime {
	return &Runtime{
		cfg:     cfg,
		logger:  logger,
		version: version,
	}
}

// Start brings the runtime up and blocks until ctx is cancelled, then
// shuts everything down in reverse order.
func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricsHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	reqLog, err := requestlog.Open(ctx, r.cfg.RequestLog, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open request log: %w", err)
	}
	defer reqLog.Close()

	ph, err := r.buildPhonemizer()
	if err != nil {
		return err
	}
	factory, err := r.buildEngineFactory()
	if err != nil {
		return err
	}
	cache := engine.NewCache(r.cfg.Voices.Dir, factory, r.logger)
	r.speech = speech.NewService(r.cfg.Synthesis, r.cfg.Voices.Dir, cache, ph, reqLog, r.logger)

	var embedded *natsserver.EmbeddedServer
	var busClient *bus.Client
	var front *busfront.Service
	if r.cfg.Bus.Enabled {
		embedded, err = natsserver.Start(r.cfg.Bus, r.logger)
		if err != nil {
			return fmt.Errorf("failed to start embedded bus: %w", err)
		}
		servers := r.cfg.Bus.Servers
		if embedded != nil {
			servers = []string{fmt.Sprintf("nats://127.0.0.1:%d", r.cfg.Bus.Port)}
		}
		busCfg := r.cfg.Bus
		busCfg.Servers = servers
		busClient, err = bus.Connect(busCfg, r.logger)
		if err != nil {
			embedded.Shutdown()
			return fmt.Errorf("failed to connect to bus: %w", err)
		}
		front = busfront.NewService(ctx, busClient, r.speech, r.logger)
		if err := front.Start(); err != nil {
			busClient.Close()
			embedded.Shutdown()
			return fmt.Errorf("failed to start bus frontend: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	if metricsHandler != nil {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metricsHandler)
		r.metricsSrv = &http.Server{
			Addr:              r.cfg.Telemetry.PrometheusBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := r.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				r.logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	r.ready.Store(true)
	r.logger.Info("speech server started",
		slog.String("addr", addr),
		slog.String("voices_dir", r.cfg.Voices.Dir),
		slog.Bool("bus", r.cfg.Bus.Enabled))

	<-ctx.Done()
	r.ready.Store(false)
	r.logger.Info("speech server stopping")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("metrics shutdown error", slog.String("error", err.Error()))
		}
	}
	if front != nil {
		front.Close()
	}
	busClient.Close()
	embedded.Shutdown()
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func (r *Runtime) buildPhonemizer() (phonemizer.Phonemizer, error) {
	switch r.cfg.Phonemizer.Mode {
	case "exec":
		ph, err := phonemizer.NewExec(r.cfg.Phonemizer.Command)
		if err != nil {
			return nil, fmt.Errorf("failed to build phonemizer: %w", err)
		}
		return ph, nil
	default:
		return phonemizer.NewMock(nil), nil
	}
}

func (r *Runtime) buildEngineFactory() (engine.Factory, error) {
	switch r.cfg.Engine.Mode {
	case "exec":
		factory, err := engine.NewExecFactory(r.cfg.Engine.Command)
		if err != nil {
			return nil, fmt.Errorf("failed to build engine factory: %w", err)
		}
		return factory, nil
	default:
		return engine.NewMockFactory(), nil
	}
}
