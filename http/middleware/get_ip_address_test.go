package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/http/middleware"
)

func TestGetIPAddress(t *testing.T) {
	tcs := []struct {
		name     string
		remote   string
		header   string
		value    string
		expected string
	}{
		{"Direct", "203.0.113.7:5150", "", "", "203.0.113.7"},
		{"Direct-Ignores-Forwarded", "203.0.113.7:5150", "X-Forwarded-For", "1.1.1.1", "203.0.113.7"},
		{"Direct-IPv6", "[2001:db8::1]:5150", "", "", "2001:db8::1"},
		{"Proxy-No-Header", "10.0.0.2:5150", "", "", "10.0.0.2"},
		{"Proxy-Only-Private", "10.0.0.2:5150", "X-Forwarded-For", "192.168.0.0", "10.0.0.2"},
		{"Proxy-Public", "10.0.0.2:5150", "X-Forwarded-For", "1.1.1.1", "1.1.1.1"},
		{"Proxy-Loopback", "127.0.0.1:5150", "X-Forwarded-For", "8.8.8.8", "8.8.8.8"},
		{"Proxy-Get-Before-Proxy", "10.0.0.2:5150", "X-Real-Ip", "10.0.0.1,1.1.1.1", "1.1.1.1"},
		{"Proxy-Get-First-Public", "10.0.0.2:5150", "X-Real-Ip", "10.255.255.255,8.8.8.8,1.1.1.1,172.16.0.0", "1.1.1.1"},
		{"Proxy-Garbage", "10.0.0.2:5150", "X-Forwarded-For", "nope, ", "10.0.0.2"},
		{"No-Remote", "", "", "", "0.0.0.0"},
		{"No-Remote-Forwarded", "", "X-Forwarded-For", "1.1.1.1", "1.1.1.1"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
			r.RemoteAddr = tc.remote
			if tc.header != "" {
				r.Header.Set(tc.header, tc.value)
			}

			// Act
			actual := middleware.GetIPAddress(r)

			// Assert
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestInjectIPAddress(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	r.RemoteAddr = "10.0.0.2:5150"
	r.Header.Set("X-Forwarded-For", "8.8.8.8")

	var actual string

	// Act
	middleware.InjectIPAddress()(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		actual, _ = rx.Context().Value(viewpoint.IpAddrKey).(string)
	})).ServeHTTP(w, r)

	// Assert
	require.Equal(t, "8.8.8.8", actual)
}
