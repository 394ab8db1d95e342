package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/xy-planning-network/viewpoint/cache"
	"github.com/xy-planning-network/viewpoint/http/middleware"
	"github.com/xy-planning-network/viewpoint/http/session"
	"github.com/xy-planning-network/viewpoint/logger"
	"github.com/xy-planning-network/viewpoint/view"
)

// An Option configures a *Server under construction.
// Components an Option does not supply are built from the Config passed to New.
type Option func(s *Server) error

// WithAssets serves the files in assets under /assets/.
func WithAssets(assets fs.FS) Option {
	return func(s *Server) error {
		s.assets = assets
		return nil
	}
}

// WithCache stores responses rendered with resp.Cache in store.
func WithCache(store cache.Store) Option {
	return func(s *Server) error {
		if store == nil {
			return errors.New("nil cache.Store")
		}

		s.cache = store
		return nil
	}
}

// WithContext exposes the provided context.Context to every request the web server handles.
func WithContext(ctx context.Context) Option {
	return func(s *Server) error {
		s.ctx = ctx
		return nil
	}
}

// WithLogger exposes the provided logger.Logger to the viewpoint app.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) error {
		s.l = l
		return nil
	}
}

// WithRendererOpts configures the *view.Renderer further,
// e.g., with additional template functions or engines.
func WithRendererOpts(opts ...view.RendererOptFn) Option {
	return func(s *Server) error {
		s.rdOpts = append(s.rdOpts, opts...)
		return nil
	}
}

// WithServer uses the *http.Server, setting its Handler when New completes.
func WithServer(srv *http.Server) Option {
	return func(s *Server) error {
		s.srv = srv
		return nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the viewpoint app.
func WithSessionStore(store session.SessionStorer) Option {
	return func(s *Server) error {
		s.sessions = store
		return nil
	}
}

// WithUserFinder sets how the current user of each request is found;
// cf. middleware.InjectUser.
func WithUserFinder(find middleware.UserFinder) Option {
	return func(s *Server) error {
		s.finder = find
		return nil
	}
}

// WithViews adds view paths searched before Config.ViewDir.
func WithViews(dirs ...fs.FS) Option {
	return func(s *Server) error {
		s.views = append(s.views, dirs...)
		return nil
	}
}
