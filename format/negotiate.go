package format

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/munnerz/goautoneg"
)

// Formats lists the format symbols r accepts, most preferred first.
//
// An explicit "format" query parameter or path extension is the only format returned.
// Otherwise, the Accept header is consulted: clauses with a quality of 0,
// partial wildcards like text/*, and unregistered media types are dropped,
// and */* stands in for html.
//
// When nothing remains, html is the only format returned.
func Formats(r *http.Request) []string {
	if r == nil {
		return []string{HTML.Symbol}
	}

	if sym, ok := requested(r); ok {
		return []string{sym}
	}

	formats := make([]string, 0)
	seen := make(map[string]bool)
	for _, clause := range goautoneg.ParseAccept(r.Header.Get("Accept")) {
		if clause.Q == 0 {
			continue
		}

		var sym string
		switch {
		case clause.Type == "*" && clause.SubType == "*":
			sym = HTML.Symbol
		case clause.SubType == "*":
			continue
		default:
			t, ok := Lookup(clause.Type + "/" + clause.SubType)
			if !ok {
				continue
			}
			sym = t.Symbol
		}

		if !seen[sym] {
			seen[sym] = true
			formats = append(formats, sym)
		}
	}

	if len(formats) == 0 {
		return []string{HTML.Symbol}
	}

	return formats
}

// Negotiate picks the offer r prefers.
//
// An explicit "format" query parameter or path extension must name one of the offers.
// Without one, offers are matched against the Accept header in order of preference.
// A missing Accept header, or */*, picks the first offer.
//
// If no offer is acceptable, ErrNotAcceptable returns.
func Negotiate(r *http.Request, offers ...Type) (Type, error) {
	if len(offers) == 0 {
		return Type{}, fmt.Errorf("%w: nothing offered", ErrNotAcceptable)
	}

	if r == nil {
		return offers[0], nil
	}

	if sym, ok := requested(r); ok {
		for _, o := range offers {
			if o.Symbol == sym {
				return o, nil
			}
		}

		return Type{}, fmt.Errorf("%w: %q not offered", ErrNotAcceptable, sym)
	}

	header := r.Header.Get("Accept")
	if strings.TrimSpace(header) == "" {
		return offers[0], nil
	}

	for _, clause := range goautoneg.ParseAccept(header) {
		if clause.Q == 0 {
			continue
		}

		for _, o := range offers {
			if clause.Type == "*" && clause.SubType == "*" {
				return o, nil
			}

			major, _, _ := strings.Cut(o.Name, "/")
			if clause.SubType == "*" && clause.Type == major {
				return o, nil
			}

			if o.matches(strings.ToLower(clause.Type + "/" + clause.SubType)) {
				return o, nil
			}
		}
	}

	return Type{}, fmt.Errorf("%w: %q", ErrNotAcceptable, header)
}

// requested retrieves the format symbol r explicitly asks for,
// first from a "format" query parameter and then from the path extension.
func requested(r *http.Request) (string, bool) {
	if r.URL == nil {
		return "", false
	}

	if f := r.URL.Query().Get("format"); f != "" {
		if t, ok := LookupSymbol(f); ok {
			return t.Symbol, true
		}
		if t, ok := LookupExt(f); ok {
			return t.Symbol, true
		}

		return strings.ToLower(f), true
	}

	if ext := path.Ext(r.URL.Path); ext != "" {
		if t, ok := LookupExt(ext); ok {
			return t.Symbol, true
		}
	}

	return "", false
}
