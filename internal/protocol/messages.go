package protocol

import "time"

// SynthesizeRequest asks the speech service to synthesize text on behalf
// of another runtime component. ReplyTo overrides the default result
// subject when set.
type SynthesizeRequest struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
	Voice     string `json:"voice"`
	ReplyTo   string `json:"reply_to,omitempty"`
}

// SynthesizeResult carries the outcome of a bus synthesis request. On
// success WAVBase64 holds the audio container; on failure Code and Error
// describe what went wrong.
type SynthesizeResult struct {
	RequestID string    `json:"request_id"`
	Voice     string    `json:"voice"`
	WAVBase64 string    `json:"wav_base64,omitempty"`
	Code      string    `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SubjectSynthesizeRequest = "speech.synthesize.request"
	SubjectSynthesizeResult  = "speech.synthesize.result"
)
