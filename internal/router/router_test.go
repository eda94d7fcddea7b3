package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRouter_UnmatchedRoutesReturnJSON(t *testing.T) {
	const apiKey = "test-admin-key"
	r := New(Handlers{}, apiKey, nil, zerolog.Nop())

	tests := []struct {
		name    string
		method  string
		path    string
		withKey bool
	}{
		{
			name:   "Unsupported order method",
			method: http.MethodDelete,
			path:   "/api/orders",
		},
		{
			name:    "Unknown admin route",
			method:  http.MethodGet,
			path:    "/api/admin/orders/not-a-thing",
			withKey: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.withKey {
				req.Header.Set("X-API-Key", apiKey)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"error": "not found"}`, w.Body.String())
		})
	}
}
