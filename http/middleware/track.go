package middleware

import (
	"net/http"

	"github.com/xy-planning-network/viewpoint/http/resp"
)

// TrackRender installs a *resp.Tracker on every request
// so a handler responding twice receives resp.ErrDoubleRender instead of a garbled response.
//
// TrackRender ought to run before any middleware that may itself respond.
func TrackRender() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(resp.Track(w, r))
		})
	}
}
