package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/loqalabs/loqa-speech/internal/speech"
	"github.com/loqalabs/loqa-speech/internal/voice"
)

type speakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type voicesResponse struct {
	Voices []voice.Info `json:"voices"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (r *Runtime) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/speak", r.handleSpeak)
	mux.HandleFunc("GET /api/voices", r.handleVoices)
	mux.HandleFunc("GET /api/health", r.handleAPIHealth)
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	return withCORS(mux)
}

func (r *Runtime) handleSpeak(w http.ResponseWriter, req *http.Request) {
	var body speakRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, &speech.Error{Code: speech.CodeBadInput, Message: "invalid JSON body"})
		return
	}

	wav, err := r.speech.Speak(req.Context(), body.Text, body.Voice)
	if err != nil {
		writeError(w, speech.AsError(err))
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wav); err != nil {
		r.logger.Warn("failed to write audio response", slog.String("error", err.Error()))
	}
}

func (r *Runtime) handleVoices(w http.ResponseWriter, req *http.Request) {
	voices, err := r.speech.ListVoices()
	if err != nil {
		writeError(w, speech.AsError(err))
		return
	}
	if voices == nil {
		voices = []voice.Info{}
	}
	writeJSON(w, http.StatusOK, voicesResponse{Voices: voices})
}

func (r *Runtime) handleAPIHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: r.version})
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

func writeError(w http.ResponseWriter, err *speech.Error) {
	status := http.StatusInternalServerError
	switch err.Code {
	case speech.CodeBadInput:
		status = http.StatusBadRequest
	case speech.CodeVoiceNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Code: err.Code, Error: err.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
