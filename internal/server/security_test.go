package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/handler"
)

func TestAuthMiddleware(t *testing.T) {
	apiKey := "secret-key"

	tests := []struct {
		name           string
		configuredKey  string
		providedKey    string
		expectedStatus int
	}{
		{"Valid API Key", apiKey, apiKey, http.StatusOK},
		{"Invalid API Key", apiKey, "wrong-key", http.StatusUnauthorized},
		{"Missing API Key", apiKey, "", http.StatusUnauthorized},
		{"Unconfigured key rejects everything", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := NewSuspiciousActivityDetector()
			middleware := AuthMiddleware(tt.configuredKey, nil, detector)

			var sawAdmin bool
			h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sawAdmin = handler.IsAdmin(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/duels/x/hide", nil)
			req.RemoteAddr = "10.0.0.1:5555"
			if tt.providedKey != "" {
				req.Header.Set(HeaderAPIKey, tt.providedKey)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.True(t, sawAdmin)
			} else {
				detector.mu.Lock()
				assert.Equal(t, 1, detector.failedAuthByIP["10.0.0.1"])
				detector.mu.Unlock()
			}
		})
	}
}

func TestAdminContextMiddleware(t *testing.T) {
	middleware := AdminContextMiddleware("secret-key")

	var sawAdmin bool
	h := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdmin = handler.IsAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Valid key marks context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/duels", nil)
		req.Header.Set(HeaderAPIKey, "secret-key")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, sawAdmin)
	})

	t.Run("Wrong key still passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/duels", nil)
		req.Header.Set(HeaderAPIKey, "nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, sawAdmin)
	})
}

func TestExtractIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	req.Header.Set(HeaderForwardedFor, "1.1.1.1, 2.2.2.2")

	assert.Equal(t, "10.0.0.9", extractIP(req, nil), "untrusted proxy header is ignored")
	assert.Equal(t, "2.2.2.2", extractIP(req, []string{"10.0.0.9"}))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	h := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		_, err := r.Body.Read(buf)
		for err == nil {
			_, err = r.Body.Read(buf)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is far too long"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
