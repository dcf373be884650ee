package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nljewellers/ledger/pkg/logger"
)

// errorBodyRecorder keeps a copy of error response bodies so the log line
// carries the message the client saw.
type errorBodyRecorder struct {
	chimiddleware.WrapResponseWriter
	body bytes.Buffer
}

func (rec *errorBodyRecorder) Write(b []byte) (int, error) {
	if rec.Status() >= http.StatusBadRequest {
		rec.body.Write(b)
	}
	return rec.WrapResponseWriter.Write(b)
}

// errorMessage pulls the "error" field out of a JSON error body.
func errorMessage(body []byte) string {
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &obj) == nil && obj.Error != "" {
		return obj.Error
	}
	return ""
}

// Logger logs one line per request: Info for success, Warn for client
// errors, Error for server errors. The filter query string is logged
// because it is what distinguishes one ledger read from another.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &errorBodyRecorder{
				WrapResponseWriter: chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor),
			}
			start := time.Now()

			// Propagate chi's request ID into our typed context key
			reqID := chimiddleware.GetReqID(r.Context())
			if reqID != "" {
				r = r.WithContext(context.WithValue(r.Context(), logger.RequestIDKey, reqID))
			}

			defer func() {
				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.Status(),
					"bytes", rec.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"remote_addr", r.RemoteAddr,
				}
				if q := r.URL.RawQuery; q != "" {
					attrs = append(attrs, "query", q)
				}
				if reqID != "" {
					attrs = append(attrs, "request_id", reqID)
				}
				if msg := errorMessage(rec.body.Bytes()); msg != "" {
					attrs = append(attrs, "error", msg)
				}

				switch {
				case rec.Status() >= http.StatusInternalServerError:
					log.Error("request completed", attrs...)
				case rec.Status() >= http.StatusBadRequest:
					log.Warn("request completed", attrs...)
				default:
					log.Info("request completed", attrs...)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
