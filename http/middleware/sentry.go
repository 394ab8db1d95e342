package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/viewpoint"
)

// ReportPanic recovers panics and reports them to Sentry,
// except in DEVELOPMENT and TESTING where panics propagate untouched.
//
// The Sentry client must be initialized first, as logger.NewSentryLogger does.
func ReportPanic(env viewpoint.Environment) Adapter {
	if env.IsDevelopment() || env.IsTesting() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(h http.Handler) http.Handler {
		return sh.Handle(h)
	}
}
