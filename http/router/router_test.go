package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/http/middleware"
	"github.com/xy-planning-network/viewpoint/http/router"
)

type ctxKey string

func stamp(key ctxKey, val string) middleware.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, r.Clone(context.WithValue(r.Context(), key, val)))
		})
	}
}

func TestRouterHandleRoutes(t *testing.T) {
	// Arrange
	rt := router.New(viewpoint.Testing, nil, nil)
	rt.OnEveryRequest(stamp("every", "yes"))

	var every, group, route any
	rt.HandleRoutes(
		[]router.Route{{
			Path:   "/posts",
			Method: http.MethodGet,
			Handler: func(w http.ResponseWriter, r *http.Request) {
				every = r.Context().Value(ctxKey("every"))
				group = r.Context().Value(ctxKey("group"))
				route = r.Context().Value(ctxKey("route"))
			},
			Middlewares: []middleware.Adapter{stamp("route", "yes")},
		}},
		stamp("group", "yes"),
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/posts", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "yes", every)
	require.Equal(t, "yes", group)
	require.Equal(t, "yes", route)

	// Arrange
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/posts", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouterSubrouter(t *testing.T) {
	// Arrange
	rt := router.New(viewpoint.Testing, nil, nil)
	api := rt.Subrouter("/api/v1")
	api.Handle(router.Route{
		Path:    "/posts",
		Method:  http.MethodGet,
		Handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) },
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestRouterHandleNotFound(t *testing.T) {
	// Arrange
	rt := router.New(viewpoint.Testing, nil, nil)
	rt.HandleNotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/nowhere", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)
}

func TestRouterAuthedRoutes(t *testing.T) {
	// Arrange
	rt := router.New(viewpoint.Testing, nil, nil)
	rt.AuthedRoutes("/login", "/logoff", []router.Route{{
		Path:    "/account",
		Method:  http.MethodGet,
		Handler: func(w http.ResponseWriter, r *http.Request) {},
	}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/account", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Contains(t, w.Header().Get("Location"), "/login?next=")
}

func TestRouterAssets(t *testing.T) {
	// Arrange
	assets := fstest.MapFS{"app.css": &fstest.MapFile{Data: []byte("main{}")}}
	rt := router.New(viewpoint.Testing, nil, assets)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/assets/app.css", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "main{}", w.Body.String())
	require.Equal(t, "max-age=2592000", w.Header().Get("Cache-Control"))
}

func TestRouterCatchAll(t *testing.T) {
	// Arrange
	rt := router.New(viewpoint.Testing, nil, nil)
	rt.CatchAll(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) })

	for _, target := range []string{"/", "/posts", "/posts/1.json"} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, target, nil)

		// Act
		rt.ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	}
}
