package phonemizer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

type execPhonemizer struct {
	cmd []string
}

// NewExec builds a phonemizer that shells out to an espeak-ng style
// binary: `<command> --ipa -q -v <language> <text>`, phonemes on stdout.
func NewExec(command string) (Phonemizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse phonemizer command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("phonemizer command empty")
	}
	return &execPhonemizer{cmd: args}, nil
}

func (p *execPhonemizer) Phonemize(ctx context.Context, text, language string) (string, error) {
	if text == "" {
		return "", nil
	}

	args := append([]string{}, p.cmd[1:]...)
	args = append(args, "--ipa", "-q", "-v", language, text)
	cmd := exec.CommandContext(ctx, p.cmd[0], args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("phonemizer command failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("phonemizer command failed: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
