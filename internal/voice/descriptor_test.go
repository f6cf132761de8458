package voice

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeVoice(t *testing.T, dir, id, sidecarJSON string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, id+".onnx"), []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}
	if sidecarJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, id+".onnx.json"), []byte(sidecarJSON), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "en_GB-alba-medium", `{"audio":{"sample_rate":22050}}`)

	d, err := Load(tmp, "en_GB-alba-medium")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.SampleRate != 22050 {
		t.Fatalf("expected sample rate 22050, got %d", d.SampleRate)
	}
	if d.Language != "en" {
		t.Fatalf("expected default language, got %q", d.Language)
	}
	if d.NoiseScale != 0.667 || d.LengthScale != 1.0 || d.NoiseW != 0.8 {
		t.Fatalf("expected default inference scalars, got %+v", d)
	}
	if d.PhonemeIDMap == nil || len(d.PhonemeIDMap) != 0 {
		t.Fatalf("expected empty phoneme map, got %v", d.PhonemeIDMap)
	}
}

func TestLoadFullSidecar(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "de_DE-thorsten-high", `{
		"audio": {"sample_rate": 16000},
		"espeak": {"voice": "de"},
		"phoneme_id_map": {"a": [4], "^": [1], "_": [0], "$": [2]},
		"inference": {"noise_scale": 0.5, "length_scale": 1.2}
	}`)

	d, err := Load(tmp, "de_DE-thorsten-high")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Language != "de" {
		t.Fatalf("expected language de, got %q", d.Language)
	}
	if d.NoiseScale != 0.5 || d.LengthScale != 1.2 {
		t.Fatalf("expected overridden scalars, got %+v", d)
	}
	if d.NoiseW != 0.8 {
		t.Fatalf("expected noise_w default to survive partial override, got %v", d.NoiseW)
	}
	if got := d.PhonemeIDMap["a"]; len(got) != 1 || got[0] != 4 {
		t.Fatalf("unexpected phoneme map: %v", d.PhonemeIDMap)
	}
}

func TestLoadMissingModel(t *testing.T) {
	_, err := Load(t.TempDir(), "nope")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Voice != "nope" {
		t.Fatalf("unexpected voice in error: %q", nf.Voice)
	}
}

func TestLoadMissingSidecar(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "en_US-amy-low", "")

	_, err := Load(tmp, "en_US-amy-low")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLoadInvalidSidecar(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "bad", `{not json`)

	_, err := Load(tmp, "bad")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestLoadMissingSampleRate(t *testing.T) {
	tmp := t.TempDir()
	writeVoice(t, tmp, "bad", `{"audio":{}}`)

	_, err := Load(tmp, "bad")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError for missing sample rate, got %v", err)
	}
}
