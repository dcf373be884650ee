package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nljewellers/ledger/internal/transport/httpapi/middleware"
	"github.com/nljewellers/ledger/pkg/logger"
)

// The production handler writes one JSON object per line, which makes the
// emitted fields easy to assert on.
func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("production", &buf)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Get("/api/v1/transactions", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"transactions":[]}`))
	})
	r.Get("/api/v1/export", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"sheet store unreachable"}`))
	})

	do := func(path string) {
		buf.Reset()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	t.Run("Success_Logged_At_Info", func(t *testing.T) {
		do("/api/v1/transactions?q=asha&purity=916")

		entry := lastLogLine(t, &buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "request completed", entry["msg"])
		assert.Equal(t, "/api/v1/transactions", entry["path"])
		assert.Equal(t, "q=asha&purity=916", entry["query"])
		assert.Equal(t, float64(http.StatusOK), entry["status"])
		assert.NotEmpty(t, entry["request_id"])
		assert.NotContains(t, entry, "error")
	})

	t.Run("Server_Error_Carries_Client_Message", func(t *testing.T) {
		do("/api/v1/export")

		entry := lastLogLine(t, &buf)
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, float64(http.StatusBadGateway), entry["status"])
		assert.Equal(t, "sheet store unreachable", entry["error"])
	})

	t.Run("Client_Error_Logged_At_Warn", func(t *testing.T) {
		do("/api/v1/nowhere")

		entry := lastLogLine(t, &buf)
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	})
}
