package view

import (
	"bytes"
	"context"
	"fmt"
	html "html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/xy-planning-network/viewpoint/format"
	"github.com/xy-planning-network/viewpoint/http/session"
	"github.com/xy-planning-network/viewpoint/logger"
)

const (
	defaultLayoutsDir = "layouts"
	maxDepth          = 32
)

// A Kind is what a Renderer renders.
type Kind int

const (
	// KindTemplate renders a template found by name and prefixes.
	KindTemplate Kind = iota

	// KindFile renders a template at an exact path in the view paths.
	KindFile

	// KindInline renders template source held in Options.Name.
	KindInline

	// KindPartial renders a partial, optionally over a collection.
	KindPartial

	// KindText writes Options.Name verbatim, wrapped in a layout when given one.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindFile:
		return "file"
	case KindInline:
		return "inline"
	case KindPartial:
		return "partial"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Options describe a single render.
type Options struct {
	Kind Kind

	// Name is the template name, file path, inline source or partial name, according to Kind.
	Name string

	// Engine is the extension of the Engine compiling inline source.
	// Defaults to GoExt.
	Engine string

	// Prefixes are the directories templates and partials are looked up in.
	Prefixes []string

	// Formats are the format symbols acceptable, most preferred first.
	// Defaults to html.
	Formats []string

	// Layout names the layout wrapping the body.
	// Layouts of partials are partials themselves.
	Layout string

	// LayoutOptional renders without a layout when Layout cannot be found.
	LayoutOptional bool

	Data    any
	Locals  Locals
	Flashes []session.Flash
	User    any

	// Object is bound to the partial's local named by As.
	Object any

	// As names the local a partial's Object or collection items are bound to.
	// Defaults to the partial's base name.
	As string

	// Collection is a slice or array the partial renders once per item.
	Collection any

	// Spacer names a partial rendered between collection items.
	Spacer string

	depth int
}

// A Result reports what a render produced.
type Result struct {
	// Format is the symbol of the format rendered.
	Format string

	// Template is the path of the template rendered, if any.
	Template string

	// Layout is the path of the layout rendered, if any.
	Layout string

	// Empty is true when a partial's collection held nothing and nothing was rendered.
	Empty bool
}

// A Renderer renders templates found in its view paths.
type Renderer struct {
	cache      bool
	dirs       []fs.FS
	engines    map[string]Engine
	funcs      FuncMap
	layoutsDir string
	logger     logger.Logger
	pool       *sync.Pool
	resolver   *Resolver
}

// NewRenderer constructs a *Renderer with the provided functional options.
func NewRenderer(opts ...RendererOptFn) *Renderer {
	rd := &Renderer{
		engines:    defaultEngines(),
		funcs:      make(FuncMap),
		layoutsDir: defaultLayoutsDir,
		pool:       &sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}

	name, nonce := Nonce()
	rd.funcs[name] = nonce
	name, sanitize := Sanitize()
	rd.funcs[name] = sanitize
	name, strip := StripTags()
	rd.funcs[name] = strip
	name, toJSON := ToJSON()
	rd.funcs[name] = toJSON

	for _, opt := range opts {
		opt(rd)
	}

	if rd.logger == nil {
		rd.logger = logger.New()
	}

	dirs := rd.dirs
	if len(dirs) == 0 {
		dirs = []fs.FS{os.DirFS(".")}
	}

	rd.resolver = newResolver(newMergeFS(dirs...), rd.engines, rd.funcs, rd.cache)
	return rd
}

// AddFn includes the named function in the function map of templates compiled from now on.
func (rd *Renderer) AddFn(name string, fn any) {
	if name == "" || fn == nil {
		return
	}

	rd.resolver.addFn(name, fn)
}

// AddEngine registers e for templates with the file extension ext.
func (rd *Renderer) AddEngine(ext string, e Engine) {
	if ext == "" || e == nil {
		return
	}

	rd.resolver.addEngine(strings.TrimPrefix(ext, "."), e)
}

// Resolver exposes the Resolver the Renderer looks templates up with.
func (rd *Renderer) Resolver() *Resolver { return rd.resolver }

// Render writes to w what o describes, wrapped in a layout when o names one.
func (rd *Renderer) Render(ctx context.Context, w io.Writer, o Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if o.depth > maxDepth {
		return Result{}, fmt.Errorf("%w: %s", ErrTooDeep, o.Name)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{format.HTML.Symbol}
	}

	if o.Kind == KindPartial {
		return rd.renderPartial(ctx, w, o)
	}

	t, err := rd.find(o)
	if err != nil {
		return Result{}, err
	}

	res := Result{Format: t.Format, Template: t.Path}
	s := Scope{Data: o.Data, Locals: o.Locals.clone(), Flashes: o.Flashes, Format: t.Format}

	var layout *Template
	if o.Layout != "" {
		layout, err = rd.findLayout(o, t.Format)
		if err != nil && !o.LayoutOptional {
			return Result{}, err
		}
	}

	if layout == nil {
		return res, rd.execute(ctx, w, t, s, o, nil)
	}

	res.Layout = layout.Path
	return res, rd.wrap(ctx, w, t, layout, s, o)
}

// find compiles the template for a non-partial render.
func (rd *Renderer) find(o Options) (*Template, error) {
	switch o.Kind {
	case KindTemplate:
		return rd.resolver.Find(o.Name, o.Prefixes, false, o.Formats)

	case KindFile:
		return rd.resolver.Load(o.Name, o.Formats[0])

	case KindInline:
		ext := o.Engine
		if ext == "" {
			ext = GoExt
		}

		return rd.resolver.Compile("inline", []byte(o.Name), ext, o.Formats[0])

	case KindText:
		return &Template{Path: "text", Format: o.Formats[0], exec: rawExec(o.Name)}, nil

	default:
		return nil, fmt.Errorf("%w: kind %d", ErrInvalid, o.Kind)
	}
}

// rawExec writes itself, ignoring the Scope.
type rawExec string

func (e rawExec) Execute(w io.Writer, _ Scope, _ FuncMap) error {
	_, err := io.WriteString(w, string(e))
	return err
}

// findLayout looks up the layout for a template rendered in the format f.
func (rd *Renderer) findLayout(o Options, f string) (*Template, error) {
	formats := []string{f}
	if !strings.Contains(o.Layout, "/") {
		return rd.resolver.Find(o.Layout, []string{rd.layoutsDir}, false, formats)
	}

	return rd.resolver.Find(o.Layout, nil, false, formats)
}

// wrap renders t into a buffer and then renders layout with it as the Content.
func (rd *Renderer) wrap(ctx context.Context, w io.Writer, t, layout *Template, s Scope, o Options) error {
	b := rd.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer rd.pool.Put(b)

	if err := rd.execute(ctx, b, t, s, o, nil); err != nil {
		return err
	}

	s.Content = html.HTML(b.String())
	return rd.execute(ctx, w, layout, s, o, t)
}

// execute runs t against s, logging how long it took.
// within is the template a layout wraps, if t is a layout.
func (rd *Renderer) execute(ctx context.Context, w io.Writer, t *Template, s Scope, o Options, within *Template) error {
	start := time.Now()
	if err := t.Execute(w, s, rd.bind(ctx, t, o, s)); err != nil {
		return fmt.Errorf("cannot render %s: %w", t.Path, err)
	}

	msg := "rendered " + t.Path
	if within != nil {
		msg = "rendered " + within.Path + " within " + t.Path
	}

	rd.logger.Debug(msg, &logger.LogContext{
		Data:     map[string]any{"duration": time.Since(start).String(), "format": s.Format},
		Template: t.Path,
	})
	return nil
}

// bind supplies the request-bound functions for executing t against s.
// Partials are looked up next to t before o's prefixes.
func (rd *Renderer) bind(ctx context.Context, t *Template, o Options, s Scope) FuncMap {
	prefixes := o.Prefixes
	if dir := path.Dir(t.Path); dir != "." && dir != "/" && !contains(prefixes, dir) {
		prefixes = append([]string{dir}, prefixes...)
	}

	return FuncMap{
		"currentUser": func() any { return o.User },
		"yield":       func() html.HTML { return s.Content },
		"partial": func(name string, args ...any) (html.HTML, error) {
			locals, err := pairs(args)
			if err != nil {
				return "", err
			}

			b := new(bytes.Buffer)
			_, err = rd.Render(ctx, b, Options{
				Kind:     KindPartial,
				Name:     name,
				Prefixes: prefixes,
				Formats:  []string{s.Format},
				Data:     o.Data,
				Locals:   locals,
				Flashes:  o.Flashes,
				User:     o.User,
				depth:    o.depth + 1,
			})
			if err != nil {
				return "", err
			}

			return html.HTML(b.String()), nil
		},
	}
}

// renderPartial renders the partial o names once, or once per item in o.Collection.
func (rd *Renderer) renderPartial(ctx context.Context, w io.Writer, o Options) (Result, error) {
	t, err := rd.resolver.Find(o.Name, o.Prefixes, true, o.Formats)
	if err != nil {
		return Result{}, err
	}

	res := Result{Format: t.Format, Template: t.Path}

	// NOTE(dlk): a partial's layout and spacer live next to it first,
	// so "posts/post" with spacer "sep" finds posts/_sep.
	prefixes := o.Prefixes
	if dir := path.Dir(t.Path); dir != "." && dir != "/" && !contains(prefixes, dir) {
		prefixes = append([]string{dir}, prefixes...)
	}

	var layout *Template
	if o.Layout != "" {
		layout, err = rd.resolver.Find(o.Layout, prefixes, true, []string{t.Format})
		if err != nil && !o.LayoutOptional {
			return Result{}, err
		}

		if layout != nil {
			res.Layout = layout.Path
		}
	}

	as := o.As
	if as == "" {
		as = localName(o.Name)
	}

	s := Scope{Data: o.Data, Flashes: o.Flashes, Format: t.Format}
	if o.Collection == nil {
		locals := o.Locals.clone()
		if o.Object != nil {
			locals[as] = o.Object
		}

		return res, rd.renderOne(ctx, w, t, layout, s.with(locals), o)
	}

	items := reflect.ValueOf(o.Collection)
	if items.Kind() != reflect.Slice && items.Kind() != reflect.Array {
		return Result{}, fmt.Errorf("%w: collection is %T, not a slice or array", ErrInvalid, o.Collection)
	}

	if items.Len() == 0 {
		res.Empty = true
		return res, nil
	}

	var spacer *Template
	if o.Spacer != "" {
		spacer, err = rd.resolver.Find(o.Spacer, prefixes, true, []string{t.Format})
		if err != nil {
			return Result{}, err
		}
	}

	for i := 0; i < items.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if spacer != nil && i > 0 {
			if err := rd.execute(ctx, w, spacer, s.with(o.Locals.clone()), o, nil); err != nil {
				return Result{}, err
			}
		}

		locals := o.Locals.clone()
		locals[as] = items.Index(i).Interface()
		locals[as+"_counter"] = i
		if err := rd.renderOne(ctx, w, t, layout, s.with(locals), o); err != nil {
			return Result{}, err
		}
	}

	return res, nil
}

func (rd *Renderer) renderOne(ctx context.Context, w io.Writer, t, layout *Template, s Scope, o Options) error {
	if layout == nil {
		return rd.execute(ctx, w, t, s, o, nil)
	}

	return rd.wrap(ctx, w, t, layout, s, o)
}

// localName derives the local a partial's object is bound to from the partial's name,
// e.g., "posts/post" => "post".
func localName(name string) string {
	base := strings.TrimPrefix(path.Base(name), "_")
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}

	return base
}

// pairs builds Locals from alternating keys and values,
// or from a single map argument.
func pairs(args []any) (Locals, error) {
	if len(args) == 1 {
		switch m := args[0].(type) {
		case Locals:
			return m.clone(), nil
		case map[string]any:
			return Locals(m).clone(), nil
		}
	}

	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: partial locals must be key-value pairs, got %d arguments", ErrInvalid, len(args))
	}

	locals := make(Locals, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: partial local key %v is %T, not a string", ErrInvalid, args[i], args[i])
		}

		locals[k] = args[i+1]
	}

	return locals, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}

	return false
}
