package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint/http/middleware"
)

func TestCORS(t *testing.T) {
	tcs := []struct {
		name    string
		origins []string
		origin  string
		allowed string
	}{
		{"Base", []string{"https://example.com"}, "https://example.com", "https://example.com"},
		{"Trailing-Slash", []string{"https://example.com/"}, "https://example.com", "https://example.com"},
		{"Second-Origin", []string{"https://example.com", "https://admin.example.com"}, "https://admin.example.com", "https://admin.example.com"},
		{"Elsewhere", []string{"https://example.com"}, "https://elsewhere.com", ""},
		{"No-Origins", []string{"", " "}, "https://elsewhere.com", ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
			r.Header.Set("Origin", tc.origin)

			// Act
			middleware.CORS(tc.origins...)(noopHandler()).ServeHTTP(w, r)

			// Assert
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tc.allowed, w.Header().Get("Access-Control-Allow-Origin"))
			if tc.allowed != "" {
				require.Equal(t, "X-Request-Id", w.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	tcs := []struct {
		method   string
		headers  string
		code     int
		expected string
	}{
		{http.MethodPatch, "X-Request-Id", http.StatusOK, "X-Request-Id"},
		{http.MethodPut, "Content-Type, X-CSRF-Token", http.StatusOK, "Content-Type,X-Csrf-Token"},
		{http.MethodPost, "X-Secret", http.StatusForbidden, ""},
		{"TRACE", "", http.StatusMethodNotAllowed, ""},
	}

	for _, tc := range tcs {
		t.Run(fmt.Sprintf("%s-%d", tc.method, tc.code), func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodOptions, "https://example.com", nil)
			r.Header.Set("Origin", "https://admin.example.com")
			r.Header.Set("Access-Control-Request-Method", tc.method)
			if tc.headers != "" {
				r.Header.Set("Access-Control-Request-Headers", tc.headers)
			}

			// Act
			middleware.CORS("https://example.com", "https://admin.example.com")(noopHandler()).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.expected, w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}
