package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/http/session"
)

// InjectSession stores the session associated with the *http.Request in *http.Request.Context
// under viewpoint.SessionKey.
// Flashes rendered by templates are read from that session.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// NOTE(dlk): an undecodable cookie yields a fresh session alongside the error
			s, _ := store.GetSession(r)
			ctx := context.WithValue(r.Context(), viewpoint.SessionKey, s)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
