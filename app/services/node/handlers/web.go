package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Respond writes v as JSON with the given status code.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// RespondError writes a JSON error envelope with the given status code.
func RespondError(w http.ResponseWriter, status int, err error) {
	Respond(w, status, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

// Decode unmarshals the request body into v.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("handlers: decode body: %w", err)
	}
	return nil
}

// WithTracing wraps an httptreemux handler, stamping it with a traceid that
// ties its start and completion log lines together.
func WithTracing(log *zap.SugaredLogger, name string, handler httptreemux.HandlerFunc) httptreemux.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		traceID := uuid.NewString()

		log.Infow("request started", "handler", name, "traceid", traceID, "method", r.Method, "path", r.URL.Path)
		handler(w, r, params)
		log.Infow("request completed", "handler", name, "traceid", traceID)
	}
}
