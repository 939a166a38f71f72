package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		wantOrigin  string
		wantCreds   string
		wantMethods bool
	}{
		{"wildcard", []string{"*"}, "https://a.test", "*", "", true},
		{"explicit", []string{"https://a.test"}, "https://a.test", "https://a.test", "true", true},
		{"explicit with trailing slash", []string{"https://a.test/"}, "https://a.test", "https://a.test", "true", true},
		{"explicit wins over wildcard", []string{"*", "https://a.test"}, "https://a.test", "https://a.test", "true", true},
		{"not allowed", []string{"https://a.test"}, "https://evil.test", "", "", false},
		{"no origin", []string{"*"}, "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(tt.origins)(okHandler())
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusTeapot, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, rec.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantMethods, rec.Header().Get("Access-Control-Allow-Methods") != "")
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"*"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://a.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSPlainOptionsPassesThrough(t *testing.T) {
	h := CORS([]string{"*"})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
