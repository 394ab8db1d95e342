package view

import (
	html "html/template"
	"strings"

	"github.com/xy-planning-network/viewpoint/http/session"
)

// Locals are the values a template, or a partial in particular, is rendered with.
type Locals map[string]any

// A Scope is what every template executes against.
type Scope struct {
	// Data is what the handler hands over for rendering, shared by a template, its layout and its partials.
	Data any

	// Locals are the values rendered only by the current template.
	Locals Locals

	// Content is the body a layout wraps.
	Content html.HTML

	// Flashes are messages pulled from the session for this response.
	Flashes []session.Flash

	// Format is the symbol of the format being rendered, e.g., "html".
	Format string
}

// flatten collapses s into a single map for engines without field access.
//
// Locals are set at the top level;
// "data", "content", "flashes" and "format" are reserved and overwrite Locals of the same name.
func (s Scope) flatten() map[string]any {
	m := make(map[string]any, len(s.Locals)+4)
	for k, v := range s.Locals {
		m[k] = v
	}

	m["data"] = s.Data
	m["content"] = s.Content
	m["flashes"] = s.Flashes
	m["format"] = s.Format
	return m
}

// lookup resolves a dotted key, like "data.title", against the flattened Scope.
func (s Scope) lookup(key string) (any, bool) {
	var cur any = s.flatten()
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if l, isLocals := cur.(Locals); isLocals {
				m = l
			} else {
				return nil, false
			}
		}

		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

// with copies s, replacing its Locals.
func (s Scope) with(locals Locals) Scope {
	s.Locals = locals
	return s
}

func (l Locals) clone() Locals {
	c := make(Locals, len(l))
	for k, v := range l {
		c[k] = v
	}

	return c
}
