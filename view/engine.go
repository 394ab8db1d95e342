package view

import (
	"fmt"
	"html"
	htmltmpl "html/template"
	"io"
	"strings"
	texttmpl "text/template"

	"github.com/flosch/pongo2/v6"
	"github.com/valyala/fasttemplate"
	"github.com/xy-planning-network/viewpoint/format"
)

// FuncMap maps names to functions callable from templates.
type FuncMap map[string]any

// An Engine compiles template source into an Executable.
type Engine interface {
	// Compile readies src, identified by name, for executing in the given format.
	// funcs holds every function the template may call.
	Compile(name string, src []byte, f string, funcs FuncMap) (Executable, error)
}

// An Executable writes a compiled template to w.
type Executable interface {
	// Execute renders against s.
	// bound replaces the functions of the same name given to Engine.Compile for this execution only.
	Execute(w io.Writer, s Scope, bound FuncMap) error
}

const (
	// GoExt identifies templates written in Go's template language.
	GoExt = "tmpl"

	// FastExt identifies {{tag}} substitution templates.
	FastExt = "ft"

	// PongoExt identifies Django-syntax templates.
	PongoExt = "pongo"
)

// defaultEngines lists the engines every Renderer starts out with.
func defaultEngines() map[string]Engine {
	return map[string]Engine{
		GoExt:    GoEngine{},
		FastExt:  FastEngine{},
		PongoExt: PongoEngine{},
	}
}

// GoEngine compiles templates with html/template when rendering HTML and text/template otherwise.
type GoEngine struct{}

func (GoEngine) Compile(name string, src []byte, f string, funcs FuncMap) (Executable, error) {
	if f == format.HTML.Symbol {
		t, err := htmltmpl.New(name).Funcs(htmltmpl.FuncMap(funcs)).Parse(string(src))
		if err != nil {
			return nil, err
		}

		return htmlExec{t}, nil
	}

	t, err := texttmpl.New(name).Funcs(texttmpl.FuncMap(funcs)).Parse(string(src))
	if err != nil {
		return nil, err
	}

	return textExec{t}, nil
}

type htmlExec struct{ t *htmltmpl.Template }

// Execute clones the compiled template so bound functions never leak between executions.
func (e htmlExec) Execute(w io.Writer, s Scope, bound FuncMap) error {
	t, err := e.t.Clone()
	if err != nil {
		return err
	}

	return t.Funcs(htmltmpl.FuncMap(bound)).Execute(w, s)
}

type textExec struct{ t *texttmpl.Template }

func (e textExec) Execute(w io.Writer, s Scope, bound FuncMap) error {
	t, err := e.t.Clone()
	if err != nil {
		return err
	}

	return t.Funcs(texttmpl.FuncMap(bound)).Execute(w, s)
}

// FastEngine compiles {{tag}} substitution templates with fasttemplate.
//
// A tag names a local, or a dotted path like "data.title".
// "yield" and "content" write the layout body unescaped,
// "partial some/name" renders a partial,
// and every other value is HTML-escaped when rendering HTML.
// Unknown tags render nothing.
type FastEngine struct{}

func (FastEngine) Compile(_ string, src []byte, f string, _ FuncMap) (Executable, error) {
	t, err := fasttemplate.NewTemplate(string(src), "{{", "}}")
	if err != nil {
		return nil, err
	}

	return fastExec{t: t, escape: f == format.HTML.Symbol}, nil
}

type fastExec struct {
	t      *fasttemplate.Template
	escape bool
}

func (e fastExec) Execute(w io.Writer, s Scope, bound FuncMap) error {
	_, err := e.t.ExecuteFunc(w, func(w io.Writer, tag string) (int, error) {
		tag = strings.TrimSpace(tag)
		switch {
		case tag == "yield" || tag == "content":
			return io.WriteString(w, string(s.Content))

		case strings.HasPrefix(tag, "partial "):
			fn, ok := bound["partial"].(func(string, ...any) (htmltmpl.HTML, error))
			if !ok {
				return 0, fmt.Errorf("%w: partial", ErrInvalid)
			}

			out, err := fn(strings.TrimSpace(strings.TrimPrefix(tag, "partial ")))
			if err != nil {
				return 0, err
			}

			return io.WriteString(w, string(out))
		}

		val, ok := s.lookup(tag)
		if !ok || val == nil {
			return 0, nil
		}

		str := fmt.Sprint(val)
		if e.escape {
			if _, safe := val.(htmltmpl.HTML); !safe {
				str = html.EscapeString(str)
			}
		}

		return io.WriteString(w, str)
	})

	return err
}

// PongoEngine compiles Django-syntax templates with pongo2.
//
// Locals are set at the top level of the pongo2 context, next to
// "data", "content", "flashes", "format" and every function.
// "content", "yield" and "partial" produce values pongo2 will not escape.
// Autoescaping only applies when rendering HTML.
type PongoEngine struct{}

func (PongoEngine) Compile(_ string, src []byte, f string, funcs FuncMap) (Executable, error) {
	tpl := string(src)
	if f != format.HTML.Symbol {
		// NOTE(dlk): pongo2 toggles autoescaping globally, so scope it to this template instead
		tpl = "{% autoescape off %}" + tpl + "{% endautoescape %}"
	}

	t, err := pongo2.FromString(tpl)
	if err != nil {
		return nil, err
	}

	return pongoExec{t: t, funcs: funcs}, nil
}

type pongoExec struct {
	t     *pongo2.Template
	funcs FuncMap
}

func (e pongoExec) Execute(w io.Writer, s Scope, bound FuncMap) error {
	ctx := make(pongo2.Context)
	for k, v := range e.funcs {
		ctx[k] = v
	}

	for k, v := range bound {
		ctx[k] = v
	}

	for k, v := range s.flatten() {
		ctx[k] = v
	}

	ctx["content"] = pongo2.AsSafeValue(string(s.Content))
	ctx["yield"] = func() *pongo2.Value { return pongo2.AsSafeValue(string(s.Content)) }
	if fn, ok := bound["partial"].(func(string, ...any) (htmltmpl.HTML, error)); ok {
		ctx["partial"] = func(name string, args ...any) (*pongo2.Value, error) {
			out, err := fn(name, args...)
			if err != nil {
				return nil, err
			}

			return pongo2.AsSafeValue(string(out)), nil
		}
	}

	return e.t.ExecuteWriter(ctx, w)
}
