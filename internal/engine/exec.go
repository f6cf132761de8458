package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"

	"github.com/loqalabs/loqa-speech/internal/voice"
)

// execEngine runs inference through a subprocess. Request JSON goes to
// stdin, the runner answers with one JSON object carrying little-endian
// float32 samples. The subprocess pipe is not reentrant, so calls are
// serialized per engine.
type execEngine struct {
	cmd         []string
	model       string
	noiseScale  float32
	lengthScale float32
	noiseW      float32
	mu          sync.Mutex
}

type execRequest struct {
	Model       string  `json:"model"`
	PhonemeIDs  []int64 `json:"phoneme_ids"`
	NoiseScale  float32 `json:"noise_scale"`
	LengthScale float32 `json:"length_scale"`
	NoiseW      float32 `json:"noise_w"`
}

type execResponse struct {
	SamplesBase64 string `json:"samples_base64"`
}

// NewExecFactory returns a Factory producing exec engines that invoke the
// given runner command. The descriptor's inference scalars are baked into
// the engine at construction.
func NewExecFactory(command string) (Factory, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse engine command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("engine command empty")
	}
	return func(d *voice.Descriptor) (Engine, error) {
		return &execEngine{
			cmd:         args,
			model:       d.ModelPath,
			noiseScale:  d.NoiseScale,
			lengthScale: d.LengthScale,
			noiseW:      d.NoiseW,
		}, nil
	}, nil
}

func (e *execEngine) Synthesize(ctx context.Context, ids []int64) ([]float32, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := json.Marshal(execRequest{
		Model:       e.model,
		PhonemeIDs:  ids,
		NoiseScale:  e.noiseScale,
		LengthScale: e.lengthScale,
		NoiseW:      e.noiseW,
	})
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("engine command failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("engine command failed: %w", err)
	}

	var resp execResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(resp.SamplesBase64)
	if err != nil {
		return nil, fmt.Errorf("decode engine samples: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("engine returned misaligned sample payload (%d bytes)", len(raw))
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, nil
}
