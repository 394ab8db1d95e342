package resp

import (
	"net/url"

	"github.com/xy-planning-network/viewpoint/cache"
	"github.com/xy-planning-network/viewpoint/logger"
	"github.com/xy-planning-network/viewpoint/view"
)

// A ResponderOptFn mutates the provided *Responder in some way.
// A ResponderOptFn is used when constructing a new Responder.
type ResponderOptFn func(*Responder)

// WithCache sets the cache.Store the Cache option stores rendered responses in.
func WithCache(s cache.Store) ResponderOptFn {
	return func(d *Responder) {
		d.cache = s
	}
}

// WithContactErrMsg sets the error message to use for error Flashes.
//
// We recommend using session.ContactUsErr as a template.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) {
		d.contactErrMsg = msg
	}
}

// WithErrTemplate sets the name of the template to render
// when an unexpected, unhandled error occurs while rendering a template.
//
// Otherwise, the Responder renders "error", which every view.Renderer can find.
func WithErrTemplate(name string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.err = name
	}
}

// WithLayout sets the name of the layout wrapping templates and files by default.
//
// A default layout that cannot be found is skipped.
func WithLayout(name string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.layout = name
	}
}

// WithLogger sets the provided implementation of Logger in order to log all statements through it.
//
// If no Logger is provided through this option, logger.New configures one.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

// WithRenderer sets the *view.Renderer templates are rendered with.
func WithRenderer(rd *view.Renderer) ResponderOptFn {
	return func(d *Responder) {
		d.renderer = rd
	}
}

// WithRootUrl sets the provided URL after parsing it into a *url.URL to use for rendering and redirecting
//
// NOTE: If u fails parsing by url.ParseRequestURI, the root URL becomes https://example.com
func WithRootUrl(u string) ResponderOptFn {
	good, err := url.ParseRequestURI(u)
	if err != nil {
		good, _ = url.ParseRequestURI("https://example.com")
	}

	return func(d *Responder) {
		d.rootUrl = good
	}
}
