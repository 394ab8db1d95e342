package resp

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/xy-planning-network/viewpoint/format"
	"github.com/xy-planning-network/viewpoint/http/session"
	"github.com/xy-planning-network/viewpoint/view"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(Responder, *Response) error

// A kind is what a Response renders.
type kind int

const (
	kindNone kind = iota
	kindTemplate
	kindPartial
	kindInline
	kindFile
	kindText
	kindJS
	kindJSON
	kindXML
	kindYAML
	kindNothing
)

func (k kind) String() string {
	switch k {
	case kindTemplate:
		return "template"
	case kindPartial:
		return "partial"
	case kindInline:
		return "inline"
	case kindFile:
		return "file"
	case kindText:
		return "text"
	case kindJS:
		return "js"
	case kindJSON:
		return "json"
	case kindXML:
		return "xml"
	case kindYAML:
		return "yaml"
	case kindNothing:
		return "nothing"
	default:
		return "none"
	}
}

// templated asserts whether the kind goes through a view.Renderer.
func (k kind) templated() bool {
	switch k {
	case kindTemplate, kindPartial, kindInline, kindFile, kindText:
		return true
	default:
		return false
	}
}

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w         http.ResponseWriter
	r         *http.Request
	closeBody bool
	code      int
	data      any
	url       *url.URL
	user      any

	kind  kind
	name  string
	value any

	// options for template lookup and layouts
	engine    string
	prefixes  []string
	formats   []string
	layout    string
	layoutSet bool
	noLayout  bool
	locals    view.Locals

	// options for partials
	as         string
	collection any
	object     any
	spacer     string

	callback    string
	contentType string
	location    string

	cacheKey string
	cacheTTL time.Duration
}

// setKind records what r renders.
// Asking for a second, different kind returns ErrConflict.
func (r *Response) setKind(k kind, name string, value any) error {
	if r.kind != kindNone && r.kind != k {
		return fmt.Errorf("%w: cannot render %s, already rendering %s", ErrConflict, k, r.kind)
	}

	r.kind = k
	r.name = name
	r.value = value
	return nil
}

// As names the local a partial's Object, or each item of its Collection, is bound to.
//
// Without As, the partial's base name is used.
func As(name string) Fn {
	return func(_ Responder, r *Response) error {
		r.as = name
		return nil
	}
}

// Cache stores the rendered body and its content type under key for ttl,
// answering later requests for the same key from the Responder's cache.Store without rendering.
//
// Only successful, 200 responses are stored.
// Without WithCache configuring the Responder, Cache does nothing.
func Cache(key string, ttl time.Duration) Fn {
	return func(_ Responder, r *Response) error {
		if key == "" {
			return fmt.Errorf("%w: cache key cannot be empty", ErrInvalid)
		}

		r.cacheKey = key
		r.cacheTTL = ttl
		return nil
	}
}

var callbackRegexp = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$.\[\]]*$`)

// Callback wraps JSON in a call to the JavaScript function fn, responding as text/javascript.
//
// fn must be a JavaScript identifier, optionally dotted.
func Callback(fn string) Fn {
	return func(_ Responder, r *Response) error {
		if !callbackRegexp.MatchString(fn) {
			return fmt.Errorf("%w: callback %q is not a JavaScript identifier", ErrInvalid, fn)
		}

		r.callback = fn
		return nil
	}
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// Collection renders the partial once for each item of c, a slice or array.
//
// An empty or nil c renders nothing.
func Collection(c any) Fn {
	return func(_ Responder, r *Response) error {
		if c == nil {
			c = []any{}
		}

		r.collection = c
		return nil
	}
}

// ContentType sets the Content-Type header, overriding the type the render would otherwise respond with.
func ContentType(ct string) Fn {
	return func(_ Responder, r *Response) error {
		if ct == "" {
			return fmt.Errorf("%w: content type cannot be empty", ErrInvalid)
		}

		r.contentType = ct
		return nil
	}
}

// Data stores the provided empty interface for writing to the client.
//
// Templates reach it as .Data.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Engine sets the extension of the template engine compiling Inline source.
//
// Without Engine, inline source is a Go template.
func Engine(ext string) Fn {
	return func(_ Responder, r *Response) error {
		r.engine = strings.TrimPrefix(ext, ".")
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			d.logger.Error(e.Error(), newLogContext(r.r, e, r.data, r.user))
		}

		if err := Code(http.StatusInternalServerError)(d, r); err != nil {
			return err
		}

		return nil
	}
}

// File renders the template at fp within the view paths, bypassing lookup.
func File(fp string) Fn {
	return func(_ Responder, r *Response) error {
		if fp == "" {
			return fmt.Errorf("%w: file path cannot be empty", ErrMissingData)
		}

		return r.setKind(kindFile, fp, nil)
	}
}

// Flash sets a flash message in the session with the passed in class and msg.
func Flash(flash session.Flash) Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// Formats sets the formats, by symbol, templates are looked up in, most preferred first.
//
// Without Formats, the formats the request accepts are used.
func Formats(syms ...string) Fn {
	return func(_ Responder, r *Response) error {
		for _, sym := range syms {
			if _, ok := format.LookupSymbol(sym); !ok {
				return fmt.Errorf("%w: %s", format.ErrUnknown, sym)
			}
		}

		r.formats = syms
		return nil
	}
}

// GenericErr combines Err() and Flash() to log the passed in error
// and set a generic error flash in the session
// using either the string set by WithContactErrMsg or session.DefaultErrMsg.
func GenericErr(e error) Fn {
	return func(d Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := session.DefaultErrMsg
		if d.contactErrMsg != "" {
			msg = d.contactErrMsg
		}

		return Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r)
	}
}

// Inline renders src as a template.
//
// Set Engine to compile src with something other than Go templates.
func Inline(src string) Fn {
	return func(_ Responder, r *Response) error {
		return r.setKind(kindInline, src, nil)
	}
}

// JS responds with the JavaScript src as is.
func JS(src string) Fn {
	return func(_ Responder, r *Response) error {
		return r.setKind(kindJS, src, nil)
	}
}

// JSON renders v as JSON.
// A string v is written as is.
func JSON(v any) Fn {
	return func(_ Responder, r *Response) error {
		return r.setKind(kindJSON, "", v)
	}
}

// Layout wraps the rendered body in the layout named.
// Layouts of partials are partials themselves.
//
// The layout must exist.
func Layout(name string) Fn {
	return func(_ Responder, r *Response) error {
		if name == "" {
			return fmt.Errorf("%w: layout name cannot be empty", ErrMissingData)
		}

		r.layout = name
		r.layoutSet = true
		r.noLayout = false
		return nil
	}
}

// Locals merges l into the values the template is rendered with, reached as .Locals.
func Locals(l view.Locals) Fn {
	return func(_ Responder, r *Response) error {
		if r.locals == nil {
			r.locals = make(view.Locals, len(l))
		}

		for k, v := range l {
			r.locals[k] = v
		}

		return nil
	}
}

// Location sets the Location header.
func Location(u string) Fn {
	return func(_ Responder, r *Response) error {
		if _, err := url.Parse(u); err != nil || u == "" {
			return fmt.Errorf("%w: location %q is not a valid URL", ErrInvalid, u)
		}

		r.location = u
		return nil
	}
}

// NoLayout renders without any layout, including the Responder's default one.
func NoLayout() Fn {
	return func(_ Responder, r *Response) error {
		r.layout = ""
		r.layoutSet = false
		r.noLayout = true
		return nil
	}
}

// Nothing renders an empty body.
func Nothing() Fn {
	return func(_ Responder, r *Response) error {
		return r.setKind(kindNothing, "", nil)
	}
}

// Object binds o to the partial's local named by As.
func Object(o any) Fn {
	return func(_ Responder, r *Response) error {
		r.object = o
		return nil
	}
}

// Param adds the query parameter to the response's URL.
//
// Used with Responder.Redirect.
func Param(key, val string) Fn {
	return func(_ Responder, r *Response) error {
		if r.url == nil {
			return fmt.Errorf("%w: Url() has not been called", ErrMissingData)
		}

		q := r.url.Query()
		q.Add(key, val)
		r.url.RawQuery = q.Encode()
		return nil
	}
}

// Partial renders the partial named.
// Pair with Object or Collection to render it for one or many values.
func Partial(name string) Fn {
	return func(_ Responder, r *Response) error {
		if name == "" {
			return fmt.Errorf("%w: partial name cannot be empty", ErrMissingData)
		}

		return r.setKind(kindPartial, name, nil)
	}
}

// Prefixes sets the directories templates and partials are looked up in, in order.
func Prefixes(p ...string) Fn {
	return func(_ Responder, r *Response) error {
		r.prefixes = append(r.prefixes, p...)
		return nil
	}
}

// Spacer renders the partial named between the items of a Collection.
func Spacer(name string) Fn {
	return func(_ Responder, r *Response) error {
		r.spacer = name
		return nil
	}
}

// Success sets the status OK to http.StatusOK
// and sets a session.FlashSuccess flash in the session with the passed in msg.
func Success(msg string) Fn {
	return func(d Responder, r *Response) error {
		if err := Code(http.StatusOK)(d, r); err != nil {
			return err
		}

		return Flash(session.Flash{Class: session.FlashSuccess, Msg: msg})(d, r)
	}
}

// Template renders the template named.
// A name without a directory is looked up in the Prefixes.
func Template(name string) Fn {
	return func(_ Responder, r *Response) error {
		if name == "" {
			return fmt.Errorf("%w: template name cannot be empty", ErrMissingData)
		}

		return r.setKind(kindTemplate, name, nil)
	}
}

// Text renders s as is.
// It responds as the request's first format, e.g., text/html for a browser, falling back to text/plain.
func Text(s string) Fn {
	return func(_ Responder, r *Response) error {
		return r.setKind(kindText, s, nil)
	}
}

// ToRoot calls URL with the Responder's default, root URL.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		if d.rootUrl == nil {
			r.url = nil
			return nil
		}

		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// User stores the user in the *Response.
//
// Templates reach it through currentUser.
// When used with Json, the user is assigned to the "currentUser" key.
func User(u any) Fn {
	return func(d Responder, r *Response) error {
		r.user = u
		return nil
	}
}

// Url parses raw the URL string and sets it in the *Response if successful.
//
// Used with Responder.Redirect.
func Url(u string) Fn {
	return func(_ Responder, r *Response) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("%w: u is not a valid URL: %v", ErrInvalid, err)
		}
		r.url = parsed
		return nil
	}
}

// Warn sets a flash warning in the session and logs the warning.
func Warn(msg string) Fn {
	return func(d Responder, r *Response) error {
		d.logger.Warn(msg, newLogContext(r.r, nil, r.data, r.user))

		return Flash(session.Flash{Class: session.FlashWarning, Msg: msg})(d, r)
	}
}

// XML renders v as XML.
// A string v is written as is.
func XML(v any) Fn {
	return func(_ Responder, r *Response) error {
		return r.setKind(kindXML, "", v)
	}
}

// YAML renders v as YAML.
// A string v is written as is.
func YAML(v any) Fn {
	return func(_ Responder, r *Response) error {
		return r.setKind(kindYAML, "", v)
	}
}
