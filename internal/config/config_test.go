package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Voices.Dir != "./voices" {
		t.Fatalf("expected default voices dir, got %q", cfg.Voices.Dir)
	}
	if cfg.Phonemizer.Mode != "exec" || cfg.Phonemizer.Command != "espeak-ng" {
		t.Fatalf("unexpected phonemizer defaults: %+v", cfg.Phonemizer)
	}
	if cfg.Engine.Mode != "mock" {
		t.Fatalf("expected mock engine default, got %q", cfg.Engine.Mode)
	}
	if cfg.Bus.Enabled {
		t.Fatal("expected bus disabled by default")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "speech.yaml")
	body := `service_name: speech-test
http:
  port: 9999
voices:
  dir: /opt/voices
engine:
  mode: exec
  command: piper-runner --quiet
synthesis:
  max_concurrent: 2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServiceName != "speech-test" || cfg.HTTP.Port != 9999 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Voices.Dir != "/opt/voices" {
		t.Fatalf("expected voices dir override, got %q", cfg.Voices.Dir)
	}
	if cfg.Engine.Command != "piper-runner --quiet" {
		t.Fatalf("expected engine command, got %q", cfg.Engine.Command)
	}
	if cfg.Synthesis.MaxConcurrent != 2 {
		t.Fatalf("expected max_concurrent 2, got %d", cfg.Synthesis.MaxConcurrent)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOQA_SPEECH_VOICES_DIR", "/srv/voices")
	t.Setenv("LOQA_SPEECH_HTTP_PORT", "8123")
	t.Setenv("LOQA_SPEECH_PHONEMIZER_MODE", "mock")
	t.Setenv("LOQA_SPEECH_SYNTHESIS_TIMEOUT_MS", "5000")
	t.Setenv("LOQA_SPEECH_BUS_ENABLED", "true")
	t.Setenv("LOQA_SPEECH_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("LOQA_SPEECH_REQUEST_LOG_ENABLED", "true")
	t.Setenv("LOQA_SPEECH_REQUEST_LOG_PATH", "./tmp.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Voices.Dir != "/srv/voices" {
		t.Fatalf("expected voices dir override, got %q", cfg.Voices.Dir)
	}
	if cfg.HTTP.Port != 8123 {
		t.Fatalf("expected port override, got %d", cfg.HTTP.Port)
	}
	if cfg.Phonemizer.Mode != "mock" {
		t.Fatalf("expected phonemizer mode override")
	}
	if cfg.Synthesis.TimeoutMS != 5000 {
		t.Fatalf("expected timeout override, got %d", cfg.Synthesis.TimeoutMS)
	}
	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if !cfg.RequestLog.Enabled || cfg.RequestLog.Path != "./tmp.db" {
		t.Fatalf("expected request log overrides, got %+v", cfg.RequestLog)
	}
}

func TestValidateRejectsBadModes(t *testing.T) {
	t.Setenv("LOQA_SPEECH_ENGINE_MODE", "gpu")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for engine mode")
	}
}

func TestValidateExecNeedsCommand(t *testing.T) {
	t.Setenv("LOQA_SPEECH_ENGINE_MODE", "exec")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for missing engine command")
	}
}
