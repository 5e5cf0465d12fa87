package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestSecurityLoggingMiddleware_RateLimitPerIP(t *testing.T) {
	detector := NewSuspiciousActivityDetector()
	detector.maxRequests = 5
	h := SecurityLoggingMiddleware(nil, detector)(okHandler())

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/duels", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, send("192.168.1.100:1234"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, send("192.168.1.100:1234"))
	assert.Equal(t, http.StatusOK, send("192.168.1.101:1234"), "other clients are unaffected")

	detector.mu.Lock()
	defer detector.mu.Unlock()
	assert.Equal(t, 6, detector.requestCountByIP["192.168.1.100"])
}

func TestAuthMiddleware_RecordsFailedAttempts(t *testing.T) {
	buf := captureLogs(t)
	detector := NewSuspiciousActivityDetector()
	h := AuthMiddleware("secret-key", nil, detector)(okHandler())

	for i := 0; i < FailedAuthAlertCount; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/duels/x/hide", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set(HeaderAPIKey, "guess")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	detector.mu.Lock()
	assert.Equal(t, FailedAuthAlertCount, detector.failedAuthByIP["10.0.0.9"])
	detector.mu.Unlock()
	assert.Contains(t, buf.String(), "Multiple failed authentication attempts")
	assert.NotContains(t, buf.String(), "guess", "provided keys are never logged")
}

func TestLoggingMiddleware_RedactsSecrets(t *testing.T) {
	buf := captureLogs(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/duels", nil)
	req.Header.Set(HeaderAPIKey, "secret-key-123")
	req.Header.Set(HeaderAuthorization, "Bearer mytoken")
	req.Header.Set("User-Agent", "TestAgent")

	loggingMiddleware(okHandler()).ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	require.Contains(t, out, LogMsgRequestHeaders)
	assert.NotContains(t, out, "secret-key-123")
	assert.NotContains(t, out, "Bearer mytoken")
	assert.Contains(t, out, RedactedValue)
	assert.Contains(t, out, "TestAgent")
	assert.Contains(t, out, LogMsgRequestCompleted)
}

func TestLoggingMiddleware_SkipsQuietPaths(t *testing.T) {
	buf := captureLogs(t)

	for _, path := range QuietPaths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		loggingMiddleware(okHandler()).ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Empty(t, buf.String())
}
