package resp

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/cache"
	"github.com/xy-planning-network/viewpoint/format"
	"github.com/xy-planning-network/viewpoint/http/session"
	"github.com/xy-planning-network/viewpoint/logger"
	"github.com/xy-planning-network/viewpoint/view"
)

const (
	defaultErrTemplate = "error"
	responderFrames    = 0
)

// Responder maintains reusable pieces for responding to HTTP requests.
// It exposes many common methods for writing structured data as an HTTP response.
// These are the forms of response Responder can execute:
//
//	Render
//	RenderToString
//	RespondTo
//	Head
//	Redirect
//	Err
//
// Html, Json and Xml are shorthands for common Render calls.
//
// Most oftentimes, setting up a single instance of a Responder suffices for an application.
// Meaning, one needs only application-wide configuration of how HTTP responses should look.
// Our suggestion does not exclude creating diverse Responders
// for non-overlapping segments of an application.
//
// When handling a specific HTTP request, calling code supplies additional data, structure,
// and so forth through Fn functions. While one can create functions of the same type,
// the Responder and Response structs do not expose much - if anything - to interact with.
type Responder struct {
	logger logger.Logger

	// Renders templates, files, inline source and partials
	renderer *view.Renderer

	// Where Cache stores rendered responses
	cache cache.Store

	// Pool of *bytes.Buffer to prerender responses into
	pool *sync.Pool

	// Error message to use for "contact us" style client-side error messages,
	// i.e., those set in a session.Flash
	contactErrMsg string

	// Root URL the responder is listening on, also used when in an error state
	rootUrl *url.URL

	templates struct {
		// Template to render when an error occurs
		// and no other response can be formed
		err string

		// Layout wrapping templates and files unless told otherwise
		layout string
	}
}

// NewResponder constructs a *Responder using the ResponderOptFns passed in.
func NewResponder(opts ...ResponderOptFn) *Responder {
	// ranging over opts may or may not overwrite defaults
	d := &Responder{
		pool: &sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
	d.templates.err = defaultErrTemplate

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.New()
	}

	if l, ok := d.logger.(logger.SkipLogger); ok {
		d.logger = l.AddSkip(responderFrames)
	}

	if d.renderer == nil {
		d.renderer = view.NewRenderer(view.WithLogger(d.logger))
	}

	if d.rootUrl != nil {
		d.renderer.AddFn(view.RootUrl(d.rootUrl))
	}

	return d
}

// CurrentUser retrieves the user set in the context.
//
// If the context.Context has no value for viewpoint.CurrentUserKey, ErrNotFound returns.
func (doer Responder) CurrentUser(ctx context.Context) (any, error) {
	val := ctx.Value(viewpoint.CurrentUserKey)
	if val == nil {
		return nil, fmt.Errorf("%w: no user found with %q", ErrNotFound, viewpoint.CurrentUserKey)
	}
	return val, nil
}

// Session retrieves the session set in the context as a session.Session.
//
// If the context.Context has no value for viewpoint.SessionKey, ErrNotFound returns.
func (doer Responder) Session(ctx context.Context) (session.Session, error) {
	val := ctx.Value(viewpoint.SessionKey)
	if val == nil {
		return session.Session{}, fmt.Errorf("%w: no session found with %q", ErrNotFound, viewpoint.SessionKey)
	}

	s, ok := val.(session.Session)
	if !ok {
		return session.Session{}, fmt.Errorf("%w: is not session.Session, is %T", ErrInvalid, val)
	}

	return s, nil
}

// Render responds with exactly one of what Template, Partial, Inline, File, Text,
// JSON, XML, YAML or Nothing describe.
// Two different ones return ErrConflict; none returns ErrMissingData.
// Neither writes anything.
//
// The Responder's default layout wraps templates and files.
// Text, inline source and partials are wrapped only when Layout names one;
// NoLayout suppresses either.
//
// When a template fails to render, the Responder's error template is rendered instead
// with http.StatusInternalServerError, and the failure returns.
//
// Render refuses to respond twice to a request passed through Track,
// returning ErrDoubleRender.
func (doer *Responder) Render(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	return doer.render(w, r, false, opts...)
}

// Html renders like Render, answering with the error template for bad options as well.
func (doer *Responder) Html(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	return doer.render(w, r, true, opts...)
}

type jsonSchema struct {
	D any `json:"data,omitempty"`
	U any `json:"currentUser,omitempty"`
}

// Json responds with data in JSON format, collating it from User(), Data() and setting appropriate headers.
//
// When standard 2xx codes are supplied, the JSON schema will look like this:
//
//	{
//		"currentUser": {},
//		"data": {}
//	}
//
// Otherwise, "currentUser" is elided.
//
// User() calls populate "currentUser"
// Data() calls populate "data"
func (doer *Responder) Json(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	envelope := func(d Responder, rr *Response) error {
		payload := jsonSchema{D: rr.data}
		if rr.code == 0 || (rr.code >= http.StatusOK && rr.code <= http.StatusNoContent) {
			payload.U = rr.user
		}

		return JSON(payload)(d, rr)
	}

	return doer.Render(w, r, append(opts, envelope)...)
}

// Xml responds with what Data() set in XML format.
func (doer *Responder) Xml(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	fromData := func(d Responder, rr *Response) error {
		if rr.data == nil {
			return fmt.Errorf("%w: Data() has not been called", ErrMissingData)
		}

		return XML(rr.data)(d, rr)
	}

	return doer.Render(w, r, append(opts, fromData)...)
}

// Head responds with the status code and no body.
// Use Location to point the client elsewhere.
func (doer *Responder) Head(w http.ResponseWriter, r *http.Request, code int, opts ...Fn) error {
	return doer.Render(w, r, append(opts, Code(code), Nothing())...)
}

// RenderToString renders what opts describe into a string instead of responding with it.
//
// The request is not marked as responded to and Flashes stay in the session.
func (doer *Responder) RenderToString(r *http.Request, opts ...Fn) (string, error) {
	rr, err := doer.do(discard{h: make(http.Header)}, r, opts...)
	if err != nil {
		return "", err
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if _, err := doer.body(r.Context(), b, rr, false); err != nil {
		return "", err
	}

	return b.String(), nil
}

// Err wraps http.Error(), logging the error causing the failure state.
//
// Use in exceptional circumstances when no Redirect or Render can occur.
// If the request was already responded to, Err only logs.
func (doer *Responder) Err(w http.ResponseWriter, r *http.Request, err error, opts ...Fn) {
	// NOTE(dlk): Err goes first so an explicit Code in opts wins over its 500
	rr, nested := doer.do(w, r, append([]Fn{Err(err)}, opts...)...)
	defer r.Body.Close()
	if nested != nil {
		err = fmt.Errorf("%w: %s", err, nested)
	}

	if rr == nil {
		rr = new(Response)
	}

	if t, ok := TrackerFrom(r.Context()); ok {
		if claimed := t.claim("Err"); claimed != nil {
			doer.logger.Warn("cannot respond with error, already responded by "+t.By(), newLogContext(r, err, nil, nil))
			return
		}
	}

	var msg string
	if err != nil {
		msg = err.Error()
	}

	if rr.code == 0 {
		rr.code = http.StatusInternalServerError
	}

	http.Error(w, msg, rr.code)
}

// Redirect calls http.Redirect, given Url() set the redirect destination.
// If Url() is not passed in opts, then ToRoot() sets the redirect destination.
//
// The default response status code is 302.
//
// If Code() set the status code to something other than standard redirect 3xx statuses,
// Redirect overwrites the status code with an appropriate 3xx status code.
func (doer *Responder) Redirect(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	if t, ok := TrackerFrom(r.Context()); ok && t.Performed() {
		return fmt.Errorf("%w: already responded by %s", ErrDoubleRender, t.By())
	}

	rr, err := doer.do(w, r, append([]Fn{ToRoot()}, opts...)...)
	if err != nil {
		return err
	}

	if rr.closeBody {
		defer r.Body.Close()
	}

	// NOTE(dlk): because of the default ToRoot(),
	// this check safeguards against bugs in the above.
	if rr.url == nil {
		return fmt.Errorf("%w: cannot redirect, no resp.url", ErrMissingData)
	}

	switch {
	case rr.code >= http.StatusMultipleChoices && rr.code <= http.StatusPermanentRedirect:
		// NOTE(dlk): code is already a 3xx, so do nothing
	case rr.code >= http.StatusBadRequest && rr.code < http.StatusInternalServerError:
		rr.code = http.StatusSeeOther
	case rr.code >= http.StatusInternalServerError:
		rr.code = http.StatusTemporaryRedirect
	default:
		rr.code = http.StatusFound
	}

	if t, ok := TrackerFrom(r.Context()); ok {
		if err := t.claim("Redirect"); err != nil {
			return err
		}
	}

	http.Redirect(w, r, rr.url.String(), rr.code)
	return nil
}

// render applies opts and responds.
// When htmlErrs is true, bad options answer with the error template too.
func (doer *Responder) render(w http.ResponseWriter, r *http.Request, htmlErrs bool, opts ...Fn) error {
	if t, ok := TrackerFrom(r.Context()); ok && t.Performed() {
		return fmt.Errorf("%w: already responded by %s", ErrDoubleRender, t.By())
	}

	rr, err := doer.do(w, r, opts...)
	if err != nil {
		if htmlErrs && !errors.Is(err, ErrDone) {
			return doer.handleHtmlError(w, r, err)
		}

		return err
	}

	if rr.closeBody {
		defer r.Body.Close()
	}

	if e, ok := doer.cached(rr); ok {
		return doer.write(w, rr, e.ContentType, e.Body)
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	ct, err := doer.body(r.Context(), b, rr, true)
	if err != nil {
		if rr.kind.templated() {
			return doer.handleHtmlError(w, r, err)
		}

		return err
	}

	if err := doer.write(w, rr, ct, b.Bytes()); err != nil {
		return err
	}

	doer.store(rr, ct, b.Bytes())
	return nil
}

// body renders rr into w, returning the content type rr renders as.
// Flashes are read out of the session when flashes is true.
func (doer *Responder) body(ctx context.Context, w io.Writer, rr *Response, flashes bool) (string, error) {
	switch rr.kind {
	case kindNone:
		return "", fmt.Errorf("%w: nothing to render, call Template, Partial, Inline, File, Text, JS, JSON, XML, YAML or Nothing", ErrMissingData)

	case kindNothing:
		return "", nil

	case kindJS:
		_, err := io.WriteString(w, rr.name)
		return format.JS.ContentType(), err

	case kindJSON:
		return doer.encodeJSON(w, rr)

	case kindXML:
		if s, ok := rr.value.(string); ok {
			_, err := io.WriteString(w, s)
			return format.XML.ContentType(), err
		}

		b, err := xml.Marshal(rr.value)
		if err != nil {
			return "", fmt.Errorf("cannot encode XML: %w", err)
		}

		if _, err := io.WriteString(w, xml.Header); err != nil {
			return "", err
		}

		_, err = w.Write(b)
		return format.XML.ContentType(), err

	case kindYAML:
		if s, ok := rr.value.(string); ok {
			_, err := io.WriteString(w, s)
			return format.YAML.ContentType(), err
		}

		b, err := yaml.Marshal(rr.value)
		if err != nil {
			return "", fmt.Errorf("cannot encode YAML: %w", err)
		}

		_, err = w.Write(b)
		return format.YAML.ContentType(), err
	}

	o := doer.viewOptions(rr)
	if flashes {
		if s, err := doer.Session(ctx); err == nil {
			o.Flashes = s.Flashes(rr.w, rr.r)
		}
	}

	res, err := doer.renderer.Render(ctx, w, o)
	if err != nil {
		return "", err
	}

	if t, ok := format.LookupSymbol(res.Format); ok && t.Symbol != format.All.Symbol {
		return t.ContentType(), nil
	}

	if rr.kind == kindText {
		return format.Text.ContentType(), nil
	}

	return format.HTML.ContentType(), nil
}

func (doer *Responder) encodeJSON(w io.Writer, rr *Response) (string, error) {
	var b []byte
	switch v := rr.value.(type) {
	case string:
		b = []byte(v)
	case json.RawMessage:
		b = v
	default:
		var err error
		b, err = json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("cannot encode JSON: %w", err)
		}
	}

	if rr.callback == "" {
		_, err := w.Write(b)
		return format.JSON.ContentType(), err
	}

	if _, err := fmt.Fprintf(w, "%s(%s)", rr.callback, b); err != nil {
		return "", err
	}

	return format.JS.ContentType(), nil
}

// viewOptions translates rr for a view.Renderer, applying the layout rules.
func (doer *Responder) viewOptions(rr *Response) view.Options {
	formats := rr.formats
	if len(formats) == 0 {
		formats = format.Formats(rr.r)
	}

	if rr.user == nil {
		// NOTE(dlk): ignore error since rendering does not require a User
		_ = populateUser(*doer, rr)
	}

	o := view.Options{
		Name:       rr.name,
		Engine:     rr.engine,
		Prefixes:   rr.prefixes,
		Formats:    formats,
		Data:       rr.data,
		Locals:     rr.locals,
		User:       rr.user,
		Object:     rr.object,
		As:         rr.as,
		Collection: rr.collection,
		Spacer:     rr.spacer,
	}

	switch rr.kind {
	case kindTemplate:
		o.Kind = view.KindTemplate
	case kindFile:
		o.Kind = view.KindFile
	case kindInline:
		o.Kind = view.KindInline
	case kindPartial:
		o.Kind = view.KindPartial
	case kindText:
		o.Kind = view.KindText
	}

	switch {
	case rr.noLayout:
	case rr.layoutSet:
		o.Layout = rr.layout
	case rr.kind == kindTemplate || rr.kind == kindFile:
		o.Layout = doer.templates.layout
		o.LayoutOptional = true
	}

	return o
}

// write responds with body, claiming the request first.
func (doer *Responder) write(w http.ResponseWriter, rr *Response, ct string, body []byte) error {
	if t, ok := TrackerFrom(rr.r.Context()); ok {
		if err := t.claim("Render"); err != nil {
			return err
		}
	}

	if rr.contentType != "" {
		ct = rr.contentType
	}

	if ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	if rr.location != "" {
		w.Header().Set("Location", rr.location)
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	w.WriteHeader(rr.code)
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return err
		}
	}

	doer.logger.Debug(fmt.Sprintf("responded %d with %s", rr.code, rr.kind), nil)
	return nil
}

func (doer *Responder) cached(rr *Response) (cache.Entry, bool) {
	if doer.cache == nil || rr.cacheKey == "" {
		return cache.Entry{}, false
	}

	return doer.cache.Get(rr.r.Context(), rr.cacheKey)
}

func (doer *Responder) store(rr *Response, ct string, body []byte) {
	if doer.cache == nil || rr.cacheKey == "" || rr.code != http.StatusOK {
		return
	}

	if rr.contentType != "" {
		ct = rr.contentType
	}

	e := cache.Entry{Body: bytes.Clone(body), ContentType: ct}
	if err := doer.cache.Set(rr.r.Context(), rr.cacheKey, e, rr.cacheTTL); err != nil {
		doer.logger.Warn(err.Error(), newLogContext(rr.r, err, nil, nil))
	}
}

// do applies all options to the passed in http.ResponseWriter and *http.Request.
//
// Calling code ought to pass Options in the correct order.
// An option requiring something set by another one should come after.
// do nonetheless attempts to retry calling functional options until all do not return errors or,
// a set of options unable to not return errors is reached.
//
// Should all options apply successfully, do returns a validly formed *Response.
func (doer *Responder) do(w http.ResponseWriter, r *http.Request, opts ...Fn) (*Response, error) {
	resp := &Response{
		closeBody: true,
		w:         w,
		r:         r,
	}

	redos := make([]Fn, 0)
	for _, opt := range opts {
		select {
		case <-r.Context().Done():
			return nil, fmt.Errorf("%w", ErrDone)
		default:
			if err := opt(*doer, resp); err != nil {
				redos = append(redos, opt)
			}
		}
	}

	i := -1
	for i != len(redos) {
		select {
		case <-r.Context().Done():
			return nil, fmt.Errorf("%w", ErrDone)
		default:
			// NOTE(dlk): because doer.redo mutates the length of redos,
			// confirm we are running up against a set of functions
			// that will not return anything other than errors by checking
			// the length of redos has not changed since calling doer.redo.
			i = len(redos)
			redos = doer.redo(resp, redos...)
		}
	}

	// NOTE(dlk): wrapup errors to send back
	var err error
	for _, opt := range redos {
		nested := opt(*doer, resp)
		if err == nil {
			err = nested
			continue
		}

		err = fmt.Errorf("%w: %s", err, nested)
	}

	if err != nil {
		return resp, err
	}

	return resp, nil
}

// handleHtmlError specially renders the error template set on the Responder
// and reports errors.
func (doer *Responder) handleHtmlError(w http.ResponseWriter, r *http.Request, err error) error {
	doer.logger.Error(err.Error(), newLogContext(r, err, nil, nil))

	if t, ok := TrackerFrom(r.Context()); ok {
		if claimed := t.claim("Err"); claimed != nil {
			return err
		}
	}

	if doer.templates.err == "" {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf(
			"%w: no error template provided, encountered while handling: %s",
			ErrBadConfig,
			err,
		)
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	_, nested := doer.renderer.Render(context.WithoutCancel(r.Context()), b, view.Options{
		Name:    doer.templates.err,
		Formats: []string{format.HTML.Symbol},
		Data:    map[string]any{"Contact": doer.contactErrMsg, "Error": err},
	})
	if nested != nil {
		doer.logger.Error(nested.Error(), newLogContext(r, nested, nil, nil))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("%w: %s", err, nested)
	}

	w.Header().Set("Content-Type", format.HTML.ContentType())
	w.WriteHeader(http.StatusInternalServerError)
	if _, nested = b.WriteTo(w); nested != nil {
		return fmt.Errorf("%w: %s", err, nested)
	}

	return err
}

// redo applies as many may Options as it can, returning those Options that continue to throw an error.
func (doer *Responder) redo(r *Response, opts ...Fn) []Fn {
	bad := make([]Fn, 0)
	for _, opt := range opts {
		if err := opt(*doer, r); err != nil {
			bad = append(bad, opt)
		}
	}

	return bad
}
