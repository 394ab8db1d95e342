package view

import (
	"io/fs"

	"github.com/xy-planning-network/viewpoint/logger"
)

// The RendererOptFn applies functional options to a *Renderer when constructing it.
type RendererOptFn func(*Renderer)

// WithCache sets whether compiled templates are kept between renders.
//
// Without this option, templates are re-read and re-compiled on every render.
func WithCache(cache bool) RendererOptFn {
	return func(rd *Renderer) {
		rd.cache = cache
	}
}

// WithEngine registers the Engine for templates with the file extension ext, without its leading dot.
func WithEngine(ext string, e Engine) RendererOptFn {
	return func(rd *Renderer) {
		rd.engines[ext] = e
	}
}

// WithFn encloses a named function so it can be added to a *Renderer's function map.
func WithFn(name string, fn any) RendererOptFn {
	return func(rd *Renderer) {
		rd.funcs[name] = fn
	}
}

// WithFS appends view paths, searched in the order given.
//
// Without this option, the current working directory is the only view path.
func WithFS(dirs ...fs.FS) RendererOptFn {
	return func(rd *Renderer) {
		rd.dirs = append(rd.dirs, dirs...)
	}
}

// WithLayoutsDir sets the directory layouts are looked up in.
//
// Without this option, layouts are looked up in "layouts".
func WithLayoutsDir(dir string) RendererOptFn {
	return func(rd *Renderer) {
		rd.layoutsDir = dir
	}
}

// WithLogger sets the logger.Logger reporting each rendered template.
func WithLogger(l logger.Logger) RendererOptFn {
	return func(rd *Renderer) {
		rd.logger = l
	}
}
