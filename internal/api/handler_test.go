//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "bar", got["foo"])
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusForbidden, "Limit reached")

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail":"Limit reached"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantStatus int
	}{
		{"valid", `{"password":"x"}`, false, 0},
		{"empty", ``, true, http.StatusBadRequest},
		{"malformed", `{"password":`, true, http.StatusBadRequest},
		{"too large", `{"password":"` + strings.Repeat("a", MaxRequestBodySize) + `"}`, true, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var v struct {
				Password string `json:"password"`
			}
			err := DecodeJSON(w, r, &v)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "x", v.Password)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, DecodeStatus(err))
		})
	}
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantDB     string
	}{
		{"archive disabled", nil, http.StatusOK, "disabled"},
		{"database ok", fakePinger{}, http.StatusOK, "ok"},
		{"database down", fakePinger{err: errors.New("gone")}, http.StatusServiceUnavailable, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHealthHandler(tt.db).RegisterHealth(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			var got struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.wantDB, got.Checks["database"])
		})
	}
}
