package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/http/middleware"
	"github.com/xy-planning-network/viewpoint/http/resp"
)

type testUser struct{ name string }

func TestInjectUser(t *testing.T) {
	d := resp.NewResponder(resp.WithRootUrl("https://example.com"))
	found := func(*http.Request) (any, error) { return testUser{"dlk"}, nil }
	anon := func(*http.Request) (any, error) { return nil, nil }
	failed := func(*http.Request) (any, error) { return nil, errors.New("no such user") }

	tcs := []struct {
		name     string
		find     middleware.UserFinder
		accept   string
		code     int
		expected any
	}{
		{"Found", found, "", http.StatusOK, testUser{"dlk"}},
		{"Anonymous", anon, "", http.StatusOK, nil},
		{"Failed-JSON", failed, "application/json", http.StatusUnauthorized, nil},
		{"Failed-HTML", failed, "text/html", http.StatusTemporaryRedirect, nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "https://example.com/posts", nil)
			if tc.accept != "" {
				r.Header.Set("Accept", tc.accept)
			}

			var actual any

			// Act
			middleware.InjectUser(d, tc.find)(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
				actual = rx.Context().Value(viewpoint.CurrentUserKey)
			})).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestRequireAuthed(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/posts", nil)

	// Act
	middleware.RequireAuthed("/login", "/logoff")(noopHandler()).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Equal(t, "/login?next=https%3A%2F%2Fexample.com%2Fposts", w.Header().Get("Location"))

	// Arrange
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "https://example.com/posts", nil)
	r.Header.Set("Accept", "application/json")

	// Act
	middleware.RequireAuthed("/login", "/logoff")(noopHandler()).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Arrange
	d := resp.NewResponder()
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "https://example.com/posts", nil)
	found := func(*http.Request) (any, error) { return testUser{"dlk"}, nil }

	// Act
	middleware.Chain(noopHandler(), middleware.InjectUser(d, found), middleware.RequireAuthed("/login", "/logoff")).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
}
