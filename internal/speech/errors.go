package speech

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/loqalabs/loqa-speech/internal/voice"
)

// Stable machine-readable error codes surfaced to callers.
const (
	CodeBadInput           = "BAD_INPUT"
	CodeVoiceNotFound      = "VOICE_NOT_FOUND"
	CodeInvalidVoiceConfig = "INVALID_VOICE_CONFIG"
	CodeSynthesisFailed    = "SYNTHESIS_FAILED"
)

// Error is a coded request failure.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// MaxTextChars bounds the accepted request text length, in characters.
const MaxTextChars = 10000

// ValidateRequest checks boundary constraints before any synthesis work
// begins. Failures are BAD_INPUT.
func ValidateRequest(text, voiceID string) error {
	if text == "" {
		return &Error{Code: CodeBadInput, Message: "text cannot be empty"}
	}
	if utf8.RuneCountInString(text) > MaxTextChars {
		return &Error{Code: CodeBadInput, Message: fmt.Sprintf("text too long (max %d chars)", MaxTextChars)}
	}
	if voiceID == "" {
		return &Error{Code: CodeBadInput, Message: "voice cannot be empty"}
	}
	return nil
}

// AsError classifies any pipeline failure into a coded Error. Coded
// errors pass through; voice loader errors map to their codes; anything
// else is a synthesis failure wrapping the collaborator's message.
func AsError(err error) *Error {
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}
	var notFound *voice.NotFoundError
	if errors.As(err, &notFound) {
		return &Error{Code: CodeVoiceNotFound, Message: fmt.Sprintf("voice %q not found", notFound.Voice), Err: err}
	}
	var badConfig *voice.ConfigError
	if errors.As(err, &badConfig) {
		return &Error{Code: CodeInvalidVoiceConfig, Message: fmt.Sprintf("voice %q has invalid config", badConfig.Voice), Err: err}
	}
	return &Error{Code: CodeSynthesisFailed, Message: "speech synthesis failed", Err: err}
}
