package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/observability"
	"github.com/poku-e/tubtakes/internal/ranking"
	"github.com/poku-e/tubtakes/internal/shortcode"
	"github.com/poku-e/tubtakes/internal/tiercode"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{
		Error:     code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeFailure maps domain errors onto statuses; anything unknown is a 500.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tiercode.ErrInvalidEncoding):
		writeError(w, r, http.StatusBadRequest, "invalid_code", err.Error())
	case errors.Is(err, shortcode.ErrDecompression):
		writeError(w, r, http.StatusBadRequest, "invalid_short_code", err.Error())
	case errors.Is(err, shortcode.ErrInvalidCommand):
		writeError(w, r, http.StatusBadRequest, "invalid_command", err.Error())
	case errors.Is(err, ranking.ErrUserRequired),
		errors.Is(err, ranking.ErrUserNameTooLong):
		writeError(w, r, http.StatusBadRequest, "invalid_user", err.Error())
	case errors.Is(err, ranking.ErrEmptySubmission):
		writeError(w, r, http.StatusUnprocessableEntity, "empty_tier_list", err.Error())
	default:
		observability.FromContext(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal_server_error", "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, "invalid_json", "request body required")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return false
	}
	return true
}

func withCommonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
