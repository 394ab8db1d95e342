package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/format"
	"github.com/xy-planning-network/viewpoint/http/resp"
)

// A UserFinder retrieves the user the *http.Request is made by.
// A nil user without error means the request is anonymous.
type UserFinder func(r *http.Request) (any, error)

// InjectUser stores the user found by find in *http.Request.Context under viewpoint.CurrentUserKey,
// where templates reach it through currentUser.
//
// A *resp.Responder is needed to handle cases a user cannot be retrieved.
// Requests preferring JSON receive http.StatusUnauthorized;
// others are redirected to the Responder's root URL.
//
// If d or find are nil, NoopAdapter returns and this middleware does nothing.
func InjectUser(d *resp.Responder, find UserFinder) Adapter {
	if d == nil || find == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := find(r)
			if err != nil {
				handleErr(w, r, http.StatusUnauthorized, d, err)
				return
			}

			if user == nil {
				// NOTE(dlk): the request may be accessing an unauthenticated endpoint,
				// something for RequireAuthed to determine
				handler.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Cache-control", "no-store")
			w.Header().Add("Pragma", "no-cache")

			ctx := context.WithValue(r.Context(), viewpoint.CurrentUserKey, user)
			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// RequireAuthed returns a middleware.Adapter that checks whether a user is authenticated,
// and requires they be authenticated.
// When the user is authenticated, then RequireAuthed hands off to the next part of the middleware chain.
//
// Authenticated means a user is set in the request context under viewpoint.CurrentUserKey.
//
// When the user is not authenticated and the request prefers JSON,
// RequireAuthed writes 401 to the client.
// Otherwise, RequireAuthed redirects to the provided login URL.
//
// The URL originally requested is appended to as a "next" query param
// when the request method is GET and the endpoint is not the logoff URL.
func RequireAuthed(loginUrl, logoffUrl string) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Context().Value(viewpoint.CurrentUserKey) == nil {
				if prefersJSON(r) {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}

				u := loginUrl
				if r.Method == http.MethodGet && r.URL.Path != logoffUrl {
					u += "?next=" + url.QueryEscape(r.URL.String())
				}

				http.Redirect(w, r, u, http.StatusTemporaryRedirect)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// prefersJSON reports whether JSON is the format the request most wants.
func prefersJSON(r *http.Request) bool {
	return format.Formats(r)[0] == "json"
}

// handleErr helps InjectUser error paths by writing responses reflecting the
// format the *http.Request prefers.
func handleErr(w http.ResponseWriter, r *http.Request, code int, d *resp.Responder, err error) {
	if prefersJSON(r) {
		d.Json(w, r, resp.Err(err), resp.Code(code))
		return
	}

	d.Redirect(w, r, resp.Err(err))
}
