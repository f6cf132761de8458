package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type VoicesConfig struct {
	Dir string `yaml:"dir"`
}

type PhonemizerConfig struct {
	Mode    string `yaml:"mode"` // mock, exec
	Command string `yaml:"command"`
}

type EngineConfig struct {
	Mode    string `yaml:"mode"` // mock, exec
	Command string `yaml:"command"`
}

type SynthesisConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	TimeoutMS     int `yaml:"timeout_ms"`
}

type BusConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type RequestLogConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
	MaxRequests   int    `yaml:"max_requests"`
}

type Config struct {
	ServiceName string           `yaml:"service_name"`
	Environment string           `yaml:"environment"`
	HTTP        HTTPConfig       `yaml:"http"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Voices      VoicesConfig     `yaml:"voices"`
	Phonemizer  PhonemizerConfig `yaml:"phonemizer"`
	Engine      EngineConfig     `yaml:"engine"`
	Synthesis   SynthesisConfig  `yaml:"synthesis"`
	Bus         BusConfig        `yaml:"bus"`
	RequestLog  RequestLogConfig `yaml:"request_log"`
}

func Default() Config {
	return Config{
		ServiceName: "loqa-speech",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Voices: VoicesConfig{
			Dir: "./voices",
		},
		Phonemizer: PhonemizerConfig{
			Mode:    "exec",
			Command: "espeak-ng",
		},
		Engine: EngineConfig{
			Mode: "mock",
		},
		Synthesis: SynthesisConfig{
			MaxConcurrent: 4,
			TimeoutMS:     60000,
		},
		Bus: BusConfig{
			Enabled:        false,
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		RequestLog: RequestLogConfig{
			Enabled:       false,
			Path:          "./data/speech-requests.db",
			RetentionDays: 30,
			MaxRequests:   100000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.ServiceName, "LOQA_SPEECH_SERVICE_NAME")
	overrideString(&cfg.Environment, "LOQA_SPEECH_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "LOQA_SPEECH_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "LOQA_SPEECH_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "LOQA_SPEECH_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "LOQA_SPEECH_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "LOQA_SPEECH_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "LOQA_SPEECH_TELEMETRY_PROMETHEUS_BIND")
	overrideString(&cfg.Voices.Dir, "LOQA_SPEECH_VOICES_DIR")
	overrideString(&cfg.Phonemizer.Mode, "LOQA_SPEECH_PHONEMIZER_MODE")
	overrideString(&cfg.Phonemizer.Command, "LOQA_SPEECH_PHONEMIZER_COMMAND")
	overrideString(&cfg.Engine.Mode, "LOQA_SPEECH_ENGINE_MODE")
	overrideString(&cfg.Engine.Command, "LOQA_SPEECH_ENGINE_COMMAND")
	overrideInt(&cfg.Synthesis.MaxConcurrent, "LOQA_SPEECH_SYNTHESIS_MAX_CONCURRENT")
	overrideInt(&cfg.Synthesis.TimeoutMS, "LOQA_SPEECH_SYNTHESIS_TIMEOUT_MS")
	overrideBool(&cfg.Bus.Enabled, "LOQA_SPEECH_BUS_ENABLED")
	overrideBool(&cfg.Bus.Embedded, "LOQA_SPEECH_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "LOQA_SPEECH_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "LOQA_SPEECH_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "LOQA_SPEECH_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "LOQA_SPEECH_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "LOQA_SPEECH_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "LOQA_SPEECH_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "LOQA_SPEECH_BUS_CONNECT_TIMEOUT_MS")
	overrideBool(&cfg.RequestLog.Enabled, "LOQA_SPEECH_REQUEST_LOG_ENABLED")
	overrideString(&cfg.RequestLog.Path, "LOQA_SPEECH_REQUEST_LOG_PATH")
	overrideInt(&cfg.RequestLog.RetentionDays, "LOQA_SPEECH_REQUEST_LOG_RETENTION_DAYS")
	overrideInt(&cfg.RequestLog.MaxRequests, "LOQA_SPEECH_REQUEST_LOG_MAX_REQUESTS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.ServiceName == "" {
		return errors.New("service_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	if cfg.Voices.Dir == "" {
		return errors.New("voices.dir must not be empty")
	}
	switch cfg.Phonemizer.Mode {
	case "mock", "exec":
	default:
		return errors.New("phonemizer.mode must be one of mock|exec")
	}
	if cfg.Phonemizer.Mode == "exec" && cfg.Phonemizer.Command == "" {
		return errors.New("phonemizer.command must be set when mode=exec")
	}
	switch cfg.Engine.Mode {
	case "mock", "exec":
	default:
		return errors.New("engine.mode must be one of mock|exec")
	}
	if cfg.Engine.Mode == "exec" && cfg.Engine.Command == "" {
		return errors.New("engine.command must be set when mode=exec")
	}
	if cfg.Synthesis.MaxConcurrent <= 0 {
		return errors.New("synthesis.max_concurrent must be >= 1")
	}
	if cfg.Synthesis.TimeoutMS < 0 {
		return errors.New("synthesis.timeout_ms must be >= 0")
	}
	if cfg.Bus.Enabled {
		if cfg.Bus.Embedded {
			if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
				return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
			}
		} else if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.RequestLog.Enabled {
		if cfg.RequestLog.Path == "" {
			return errors.New("request_log.path must not be empty when enabled")
		}
		if cfg.RequestLog.RetentionDays < 0 {
			return errors.New("request_log.retention_days must be >= 0")
		}
	}
	return nil
}
