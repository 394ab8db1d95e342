package server

import (
	"net/http"

	"github.com/xy-planning-network/viewpoint/http/resp"
)

const (
	maintenanceTmpl = "maintenance"
	retryAfter      = "600"
)

// MaintModeHandler responds to every request with http.StatusServiceUnavailable,
// rendering the "maintenance" template without a layout when one is found.
func MaintModeHandler(d *resp.Responder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)

		page, err := d.RenderToString(r, resp.Template(maintenanceTmpl), resp.NoLayout())
		if err != nil {
			d.Head(w, r, http.StatusServiceUnavailable)
			return
		}

		d.Render(w, r,
			resp.Text(page),
			resp.ContentType("text/html; charset=utf-8"),
			resp.Code(http.StatusServiceUnavailable),
		)
	})
}

// Maintain funnels every request to MaintModeHandler.
// Call Maintain before registering any routes.
func (s *Server) Maintain() {
	s.Router.CatchAll(MaintModeHandler(s.Responder).ServeHTTP)
}
