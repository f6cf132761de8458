package voice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	modelExt   = ".onnx"
	sidecarExt = ".onnx.json"
)

// Defaults applied when the sidecar omits optional fields.
const (
	DefaultNoiseScale  = 0.667
	DefaultLengthScale = 1.0
	DefaultNoiseW      = 0.8
	DefaultLanguage    = "en"
)

// Descriptor is the in-memory form of a voice's on-disk metadata: the
// model asset location plus the fields the synthesis pipeline consumes.
// Immutable once loaded.
type Descriptor struct {
	ID           string
	ModelPath    string
	SampleRate   int
	Language     string
	PhonemeIDMap map[string][]int64
	NoiseScale   float32
	LengthScale  float32
	NoiseW       float32
}

// NotFoundError reports a voice whose model asset or sidecar is absent.
type NotFoundError struct {
	Voice string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("voice %q not found", e.Voice)
}

// ConfigError reports a sidecar that exists but cannot be parsed into the
// expected schema.
type ConfigError struct {
	Voice string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("voice %q has invalid config: %v", e.Voice, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type sidecar struct {
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
	Espeak *struct {
		Voice string `json:"voice"`
	} `json:"espeak"`
	PhonemeIDMap map[string][]int64 `json:"phoneme_id_map"`
	Inference    *struct {
		NoiseScale  *float32 `json:"noise_scale"`
		LengthScale *float32 `json:"length_scale"`
		NoiseW      *float32 `json:"noise_w"`
	} `json:"inference"`
}

// Load reads the descriptor for one voice from dir. The model asset
// `<id>.onnx` and the sidecar `<id>.onnx.json` must both exist.
func Load(dir, id string) (*Descriptor, error) {
	modelPath := filepath.Join(dir, id+modelExt)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, &NotFoundError{Voice: id}
	}

	data, err := os.ReadFile(filepath.Join(dir, id+sidecarExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Voice: id}
		}
		return nil, &ConfigError{Voice: id, Err: err}
	}

	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, &ConfigError{Voice: id, Err: err}
	}
	if sc.Audio.SampleRate <= 0 {
		return nil, &ConfigError{Voice: id, Err: fmt.Errorf("audio.sample_rate missing or invalid")}
	}

	d := &Descriptor{
		ID:           id,
		ModelPath:    modelPath,
		SampleRate:   sc.Audio.SampleRate,
		Language:     DefaultLanguage,
		PhonemeIDMap: sc.PhonemeIDMap,
		NoiseScale:   DefaultNoiseScale,
		LengthScale:  DefaultLengthScale,
		NoiseW:       DefaultNoiseW,
	}
	if d.PhonemeIDMap == nil {
		d.PhonemeIDMap = map[string][]int64{}
	}
	if sc.Espeak != nil && sc.Espeak.Voice != "" {
		d.Language = sc.Espeak.Voice
	}
	if inf := sc.Inference; inf != nil {
		if inf.NoiseScale != nil {
			d.NoiseScale = *inf.NoiseScale
		}
		if inf.LengthScale != nil {
			d.LengthScale = *inf.LengthScale
		}
		if inf.NoiseW != nil {
			d.NoiseW = *inf.NoiseW
		}
	}
	return d, nil
}
