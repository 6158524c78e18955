package viewer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/aviationcerts/internal/apiclient"
	"github.com/yourorg/aviationcerts/internal/session"
)

const correlationHeader = "X-Correlation-Id"

// ErrorBody is the JSON error envelope of every non-2xx response.
type ErrorBody struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	CorrID            string `json:"corrId"`
	Retryable         bool   `json:"retryable"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
	Errors            any    `json:"errors,omitempty"`
}

type ctxKey int

const (
	corrIDKey ctxKey = iota
	ownerKey
)

func correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get(correlationHeader)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(correlationHeader, corrID)
		ctx := apiclient.WithCorrelationID(r.Context(), corrID)
		ctx = context.WithValue(ctx, corrIDKey, corrID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("http request",
				"corrId", corrIDFrom(r),
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// requireSession rejects requests without a bearer token or access_token
// cookie and attaches the session for downstream API calls.
func requireSession(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromRequest(r)
			if !ok {
				logger.Warn("unauthenticated request", "corrId", corrIDFrom(r), "path", r.URL.Path)
				writeError(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required", false)
				return
			}
			ctx := session.ContextWith(r.Context(), sess)
			ctx = context.WithValue(ctx, ownerKey, ownerOf(sess))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ownerOf keys jobs and rate limits by a digest of the token so the raw
// token is never stored.
func ownerOf(s session.Session) string {
	sum := sha256.Sum256([]byte(s.Token()))
	return hex.EncodeToString(sum[:])
}

func corrIDFrom(r *http.Request) string {
	v, _ := r.Context().Value(corrIDKey).(string)
	return v
}

func ownerFrom(r *http.Request) string {
	v, _ := r.Context().Value(ownerKey).(string)
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any, extra map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	for k, val := range extra {
		w.Header().Set(k, val)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, retryable bool) {
	writeJSON(w, status, ErrorBody{Code: code, Message: message, CorrID: corrIDFrom(r), Retryable: retryable}, nil)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
