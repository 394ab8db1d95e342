package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/logger"
)

// LogRequest logs the request's originating IP address, method, requested URL,
// and the response's status code, size and duration
// using the enclosed implementation of logger.Logger.
//
// LogRequest scrubs the values for the following keys:
// - password
//
// if logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uri := r.URL.Path
			q := r.URL.Query()
			if val := q.Get("password"); val != "" {
				q.Set("password", "xxxxxxx")
			}

			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			strs := []string{r.Method, uri}
			if ip, ok := r.Context().Value(viewpoint.IpAddrKey).(string); ok && ip != "" {
				strs = append([]string{ip}, strs...)
			}

			m := httpsnoop.CaptureMetrics(h, w, r)
			strs = append(strs, fmt.Sprint(m.Code))

			data := map[string]any{
				"bytes":    m.Written,
				"duration": m.Duration.String(),
				"status":   m.Code,
			}
			if id, ok := r.Context().Value(viewpoint.RequestIDKey).(string); ok {
				data["requestID"] = id
			}

			ls.Info(strings.Join(strs, " "), &logger.LogContext{Data: data})
		})
	}
}
