package view

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/xy-planning-network/viewpoint/format"
)

// A Template is a compiled template found in a view path.
type Template struct {
	// Path locates the template within the view paths.
	Path string

	// Format is the symbol of the format the template renders.
	Format string

	// Engine is the extension of the Engine that compiled the template.
	Engine string

	exec Executable
}

// Execute renders t against s, with bound replacing compile-time functions.
func (t *Template) Execute(w io.Writer, s Scope, bound FuncMap) error {
	return t.exec.Execute(w, s, bound)
}

// A Resolver finds and compiles templates, caching them when asked to.
type Resolver struct {
	fs      fs.FS
	engines map[string]Engine
	funcs   FuncMap
	cache   bool

	mu    sync.RWMutex
	found map[string]*Template
}

func newResolver(filesys fs.FS, engines map[string]Engine, funcs FuncMap, cache bool) *Resolver {
	return &Resolver{
		fs:      filesys,
		engines: engines,
		funcs:   funcs,
		cache:   cache,
		found:   make(map[string]*Template),
	}
}

// Find looks up the template by name, trying each prefix and then each format.
//
// A name holding a directory, like "posts/show", ignores prefixes.
// Partials prefix the base name with an underscore.
// A name ending in a registered engine extension is opened as is.
//
// When no template matches, ErrMissingTemplate returns.
func (r *Resolver) Find(name string, prefixes []string, partial bool, formats []string) (*Template, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: no name", ErrMissingTemplate)
	}

	if len(formats) == 0 {
		formats = []string{format.HTML.Symbol}
	}

	key := fmt.Sprintf("%s|%s|%t|%s", name, strings.Join(prefixes, ","), partial, strings.Join(formats, ","))
	if t, ok := r.cached(key); ok {
		return t, nil
	}

	dir, base := path.Split(name)
	if dir != "" {
		prefixes = []string{strings.TrimSuffix(dir, "/")}
	}

	if len(prefixes) == 0 {
		prefixes = []string{""}
	}

	if partial {
		base = "_" + base
	}

	for _, prefix := range prefixes {
		for _, c := range r.candidates(base, formats) {
			fp := path.Join(prefix, c.file)
			if _, err := fs.Stat(r.fs, fp); err != nil {
				continue
			}

			t, err := r.compile(fp, c.format)
			if err != nil {
				return nil, err
			}

			r.store(key, t)
			return t, nil
		}
	}

	kind := "template"
	if partial {
		kind = "partial"
	}

	return nil, fmt.Errorf(
		"%w: %s %q with formats %v in prefixes %v",
		ErrMissingTemplate,
		kind,
		name,
		formats,
		prefixes,
	)
}

// Load opens the template at fp, bypassing lookup.
// Its format is taken from the file name or, if absent there, is f.
func (r *Resolver) Load(fp, f string) (*Template, error) {
	fp = strings.TrimPrefix(path.Clean(fp), "/")
	if _, err := fs.Stat(r.fs, fp); err != nil {
		return nil, fmt.Errorf("%w: file %q: %s", ErrMissingTemplate, fp, err)
	}

	key := "file|" + fp + "|" + f
	if t, ok := r.cached(key); ok {
		return t, nil
	}

	if inner := formatOf(fp); inner != "" {
		f = inner
	}

	t, err := r.compile(fp, f)
	if err != nil {
		return nil, err
	}

	r.store(key, t)
	return t, nil
}

// Compile compiles src with the Engine registered for ext.
// Nothing is cached.
func (r *Resolver) Compile(name string, src []byte, ext, f string) (*Template, error) {
	engine, ok := r.engine(ext)
	if !ok {
		return nil, fmt.Errorf("%w: for %q", ErrNoEngine, ext)
	}

	exec, err := engine.Compile(name, src, f, r.funcMap())
	if err != nil {
		return nil, fmt.Errorf("cannot compile %s: %w", name, err)
	}

	return &Template{Path: name, Format: f, Engine: ext, exec: exec}, nil
}

// Reset drops every cached template.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.found = make(map[string]*Template)
}

type candidate struct {
	file   string
	format string
}

// candidates lists the file names base may be found under, most specific first.
func (r *Resolver) candidates(base string, formats []string) []candidate {
	exts := r.exts()

	if ext := strings.TrimPrefix(path.Ext(base), "."); ext != "" {
		if _, ok := r.engine(ext); ok {
			f := formatOf(base)
			if f == "" {
				f = formats[0]
			}
			return []candidate{{file: base, format: f}}
		}
	}

	cs := make([]candidate, 0, len(exts)*(len(formats)+1))
	for _, f := range formats {
		for _, ext := range exts {
			cs = append(cs, candidate{file: base + "." + f + "." + ext, format: f})
		}
	}

	for _, ext := range exts {
		cs = append(cs, candidate{file: base + "." + ext, format: formats[0]})
	}

	return cs
}

func (r *Resolver) compile(fp, f string) (*Template, error) {
	src, err := fs.ReadFile(r.fs, fp)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTemplate, fp)
		}
		return nil, fmt.Errorf("cannot read %s: %w", fp, err)
	}

	return r.Compile(fp, src, strings.TrimPrefix(path.Ext(fp), "."), f)
}

func (r *Resolver) cached(key string) (*Template, bool) {
	if !r.cache {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.found[key]
	return t, ok
}

func (r *Resolver) store(key string, t *Template) {
	if !r.cache {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.found[key] = t
}

func (r *Resolver) engine(ext string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[ext]
	return e, ok
}

// exts lists the registered engine extensions in a stable order.
func (r *Resolver) exts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.engines))
	for ext := range r.engines {
		exts = append(exts, ext)
	}

	sort.Strings(exts)
	return exts
}

// funcMap merges compile-time functions with placeholders for bound ones.
func (r *Resolver) funcMap() FuncMap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fm := make(FuncMap, len(r.funcs)+len(boundFns))
	for k, v := range r.funcs {
		fm[k] = v
	}

	for k, v := range boundFns {
		fm[k] = v
	}

	return fm
}

// addFn includes fn in compile-time functions, dropping cached templates compiled without it.
func (r *Resolver) addFn(name string, fn any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	r.found = make(map[string]*Template)
}

// addEngine registers e for ext, dropping cached templates.
func (r *Resolver) addEngine(ext string, e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[ext] = e
	r.found = make(map[string]*Template)
}

// formatOf pulls the format segment out of a file name like "show.html.tmpl".
// If the segment is not a registered format, formatOf returns an empty string.
func formatOf(fp string) string {
	trimmed := strings.TrimSuffix(fp, path.Ext(fp))
	seg := strings.TrimPrefix(path.Ext(trimmed), ".")
	if seg == "" {
		return ""
	}

	if t, ok := format.LookupSymbol(seg); ok {
		return t.Symbol
	}

	if t, ok := format.LookupExt(seg); ok {
		return t.Symbol
	}

	return ""
}
