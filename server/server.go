package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/cache"
	"github.com/xy-planning-network/viewpoint/http/middleware"
	"github.com/xy-planning-network/viewpoint/http/resp"
	"github.com/xy-planning-network/viewpoint/http/router"
	"github.com/xy-planning-network/viewpoint/http/session"
	"github.com/xy-planning-network/viewpoint/logger"
	"github.com/xy-planning-network/viewpoint/view"
)

// A Server manages and exposes all components of a viewpoint app to one another.
type Server struct {
	*resp.Responder
	*router.Router

	assets   fs.FS
	cache    cache.Store
	cfg      Config
	ctx      context.Context
	cancel   context.CancelFunc
	finder   middleware.UserFinder
	l        logger.Logger
	rd       *view.Renderer
	rdOpts   []view.RendererOptFn
	sessions session.SessionStorer
	srv      *http.Server
	views    []fs.FS
}

// New constructs a Server from cfg and the provided options.
// Options supplied to New replace the components New otherwise builds from cfg.
func New(cfg Config, opts ...Option) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("%w: %s", viewpoint.ErrBadConfig, err)
		}
	}

	if s.ctx == nil {
		s.ctx = context.Background()
	}

	if s.l == nil {
		s.l = defaultLogger(cfg)
	}

	if s.cache == nil {
		c, err := defaultCache(cfg)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}

	if s.sessions == nil {
		store, err := defaultSessionStore(cfg)
		if err != nil {
			return nil, err
		}
		s.sessions = store
	}

	s.rd = defaultRenderer(cfg, s.l, s.views, s.rdOpts)
	s.Responder = defaultResponder(cfg, s.l, s.rd, s.cache)
	s.Router = defaultRouter(cfg, s.l, s.Responder, s.assets, s.defaultMiddlewares())

	if s.srv == nil {
		s.srv = defaultServer(cfg)
	}
	s.srv.Handler = recoverer(cfg.Env, s.l, s.Router)

	s.l.Debug(fmt.Sprintf("configured %s server for %s", cfg.Env, cfg.BaseURL), nil)

	return s, nil
}

func (s *Server) EmitCache() cache.Store                  { return s.cache }
func (s *Server) EmitLogger() logger.Logger               { return s.l }
func (s *Server) EmitRenderer() *view.Renderer            { return s.rd }
func (s *Server) EmitSessionStore() session.SessionStorer { return s.sessions }

// Guide begins the web server.
//
// These, and (*Server).Shutdown, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (s *Server) Guide() error {
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(s.ctx)
	defer s.cancel()

	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case sig := <-ch:
			s.l.Info(fmt.Sprint("received shutdown signal: ", sig), nil)
			s.cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		s.l.Info(fmt.Sprintf("running web server at %s", s.srv.Addr), nil)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			err = fmt.Errorf("could not listen: %w", err)
			s.l.Error(err.Error(), nil)
			s.cancel()
		}
	}()

	<-ctx.Done()
	return s.Shutdown()
}

// Shutdown shutdowns the web server.
func (s *Server) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.l.Info("shutting down web server", nil)
	if err := s.srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	if c, ok := s.cache.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			s.l.Warn(fmt.Sprintf("could not close cache: %s", err), nil)
		}
	}

	s.l.Info("web server shutdown successfully", nil)
	return nil
}

// defaultMiddlewares lists the middlewares every request passes through, in order.
func (s *Server) defaultMiddlewares() []middleware.Adapter {
	return []middleware.Adapter{
		middleware.TrackRender(),
		middleware.RateLimit(middleware.NewVisitors()),
		middleware.ForceHTTPS(s.cfg.Env),
		middleware.InjectIPAddress(),
		middleware.RequestID(),
		middleware.LogRequest(s.l),
		middleware.CORS(append([]string{s.cfg.BaseURL.Scheme + "://" + s.cfg.BaseURL.Host}, s.cfg.CORSOrigins...)...),
		middleware.InjectSession(s.sessions),
		middleware.InjectUser(s.Responder, s.finder),
	}
}
