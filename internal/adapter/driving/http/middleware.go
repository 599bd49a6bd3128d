package httphandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// statusWriter records the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// ApplyMiddleware wraps next with security headers, panic recovery and request
// logging. Recovery is innermost so a panic is logged with its 500 status.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return loggingMiddleware(logger, securityHeadersMiddleware(recoveryMiddleware(logger, next)))
}

// loggingMiddleware logs one line per request. Tile proxy hits drop to debug
// unless they fail upstream; a single map load fetches dozens of them.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		level := slog.LevelInfo
		if strings.HasPrefix(r.URL.Path, "/tiles/") && sw.status < http.StatusInternalServerError {
			level = slog.LevelDebug
		}
		logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// securityHeadersMiddleware stops browsers from sniffing uploaded photo
// payloads and from framing the map.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("handler panicked", "panic", v, "method", r.Method, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
