package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/viewpoint"
)

const requestIDHeader = "X-Request-Id"

// RequestID adds a uuid to the request context under viewpoint.RequestIDKey
// and echoes it in the "X-Request-Id" response header.
//
// A uuid already present in the "X-Request-Id" request header is reused.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, id)
			ctx := context.WithValue(r.Context(), viewpoint.RequestIDKey, id)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
