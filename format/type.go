package format

import (
	"mime"
	"sort"
	"strings"
	"sync"
)

// A Type describes a media type by the symbol templates and handlers name it with.
type Type struct {
	// Symbol is the short name, e.g., "html", "json".
	Symbol string

	// Name is the canonical media type, e.g., "text/html".
	Name string

	// Synonyms are other media types identifying the same format, e.g., "application/xhtml+xml".
	Synonyms []string

	// Extensions are path extensions, without the dot, identifying the format.
	// The Symbol is always considered an extension.
	Extensions []string
}

var (
	HTML = Type{Symbol: "html", Name: "text/html", Synonyms: []string{"application/xhtml+xml"}, Extensions: []string{"htm"}}
	Text = Type{Symbol: "text", Name: "text/plain", Extensions: []string{"txt"}}
	JS   = Type{
		Symbol:     "js",
		Name:       "text/javascript",
		Synonyms:   []string{"application/javascript", "application/x-javascript"},
		Extensions: []string{"mjs"},
	}
	CSS  = Type{Symbol: "css", Name: "text/css"}
	JSON = Type{Symbol: "json", Name: "application/json", Synonyms: []string{"text/x-json", "application/jsonrequest"}}
	XML  = Type{Symbol: "xml", Name: "application/xml", Synonyms: []string{"text/xml", "application/x-xml"}}
	YAML = Type{
		Symbol:     "yaml",
		Name:       "application/yaml",
		Synonyms:   []string{"application/x-yaml", "text/yaml"},
		Extensions: []string{"yml"},
	}
	CSV  = Type{Symbol: "csv", Name: "text/csv"}
	RSS  = Type{Symbol: "rss", Name: "application/rss+xml"}
	Atom = Type{Symbol: "atom", Name: "application/atom+xml"}

	// All matches any media type.
	All = Type{Symbol: "all", Name: "*/*"}
)

// registry holds every known Type by symbol.
var registry = struct {
	sync.RWMutex
	types map[string]Type
}{types: make(map[string]Type)}

func init() {
	for _, t := range []Type{HTML, Text, JS, CSS, JSON, XML, YAML, CSV, RSS, Atom} {
		Register(t)
	}
}

// Register adds t to the known Types, replacing any Type with the same Symbol.
// A Type without a Symbol or Name is ignored.
func Register(t Type) {
	if t.Symbol == "" || t.Name == "" {
		return
	}

	registry.Lock()
	defer registry.Unlock()
	registry.types[t.Symbol] = t
}

// Lookup finds the Type whose Name or Synonyms matches mediaType.
// Parameters like charset are ignored and matching is case-insensitive.
func Lookup(mediaType string) (Type, bool) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}

	if mt == All.Name {
		return All, true
	}

	registry.RLock()
	defer registry.RUnlock()
	for _, t := range sortedTypes() {
		if t.matches(mt) {
			return t, true
		}
	}

	return Type{}, false
}

// LookupExt finds the Type identified by the path extension ext, with or without its leading dot.
func LookupExt(ext string) (Type, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return Type{}, false
	}

	registry.RLock()
	defer registry.RUnlock()
	for _, t := range sortedTypes() {
		if t.Symbol == ext {
			return t, true
		}
		for _, e := range t.Extensions {
			if e == ext {
				return t, true
			}
		}
	}

	return Type{}, false
}

// LookupSymbol finds the Type registered under sym.
func LookupSymbol(sym string) (Type, bool) {
	if sym == All.Symbol {
		return All, true
	}

	registry.RLock()
	defer registry.RUnlock()
	t, ok := registry.types[strings.ToLower(sym)]
	return t, ok
}

// ContentType formats t for a Content-Type header.
// Textual types include a UTF-8 charset.
func (t Type) ContentType() string {
	if t.textual() {
		return t.Name + "; charset=utf-8"
	}

	return t.Name
}

// IsZero asserts whether t is the zero-value Type.
func (t Type) IsZero() bool { return t.Symbol == "" && t.Name == "" }

func (t Type) String() string { return t.Name }

func (t Type) matches(mediaType string) bool {
	if t.Name == mediaType {
		return true
	}

	for _, s := range t.Synonyms {
		if s == mediaType {
			return true
		}
	}

	return false
}

func (t Type) textual() bool {
	if strings.HasPrefix(t.Name, "text/") {
		return true
	}

	switch t.Symbol {
	case JSON.Symbol, XML.Symbol, YAML.Symbol, RSS.Symbol, Atom.Symbol:
		return true
	default:
		return false
	}
}

// sortedTypes lists registered Types ordered by Symbol so lookups are deterministic.
// Callers must hold the registry lock.
func sortedTypes() []Type {
	types := make([]Type, 0, len(registry.types))
	for _, t := range registry.types {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i].Symbol < types[j].Symbol })
	return types
}
