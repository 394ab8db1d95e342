package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/cache"
	"github.com/xy-planning-network/viewpoint/format"
	"github.com/xy-planning-network/viewpoint/http/middleware"
	"github.com/xy-planning-network/viewpoint/http/resp"
	"github.com/xy-planning-network/viewpoint/http/router"
	"github.com/xy-planning-network/viewpoint/http/session"
	"github.com/xy-planning-network/viewpoint/logger"
	"github.com/xy-planning-network/viewpoint/view"
)

const (
	cachePrefix   = "viewpoint:cache:"
	sessionMaxAge = 3600 * 24 * 7
)

// defaultLogger constructs a logger.Logger logging at the configured level.
func defaultLogger(cfg Config) logger.Logger {
	l := logger.New(logger.WithEnv(cfg.Env.String()), logger.WithLevel(cfg.LogLevel))
	l.Debug("setting up app logger", nil)

	return l
}

// defaultCache constructs a cache.Store backed by Redis when REDIS_URL is set,
// or by memory otherwise.
func defaultCache(cfg Config) (cache.Store, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", viewpoint.ErrBadConfig, redisURLEnvVar, err)
	}

	return cache.NewRedisStore(opts, cachePrefix), nil
}

// defaultRenderer constructs a *view.Renderer searching views first, then VIEW_DIR.
//
// defaultRenderer makes available these functions in a template,
// in addition to those every *view.Renderer has:
//
//   - "env"
//   - "isDevelopment"
//   - "isProduction"
//   - "isStaging"
func defaultRenderer(cfg Config, l logger.Logger, views []fs.FS, opts []view.RendererOptFn) *view.Renderer {
	dirs := append(append([]fs.FS(nil), views...), os.DirFS(cfg.ViewDir))

	args := []view.RendererOptFn{
		view.WithCache(cfg.CacheTemplates),
		view.WithFS(dirs...),
		view.WithLogger(l),
		view.WithFn(view.Env(cfg.Env)),
		view.WithFn("isDevelopment", cfg.Env.IsDevelopment),
		view.WithFn("isProduction", cfg.Env.IsProduction),
		view.WithFn("isStaging", cfg.Env.IsStaging),
	}

	return view.NewRenderer(append(args, opts...)...)
}

// defaultResponder configures the *resp.Responder to be used by http.Handlers.
func defaultResponder(cfg Config, l logger.Logger, rd *view.Renderer, c cache.Store) *resp.Responder {
	args := []resp.ResponderOptFn{
		resp.WithCache(c),
		resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, cfg.ContactUs)),
		resp.WithLayout(cfg.Layout),
		resp.WithLogger(l),
		resp.WithRenderer(rd),
		resp.WithRootUrl(cfg.BaseURL.String()),
	}

	return resp.NewResponder(args...)
}

// defaultRouter constructs a *router.Router to be used by the web server.
//
// Requests for HTML matching no route are redirected to the root URL;
// others receive http.StatusNotFound.
func defaultRouter(
	cfg Config,
	l logger.Logger,
	d *resp.Responder,
	assets fs.FS,
	mws []middleware.Adapter,
) *router.Router {
	route := router.New(cfg.Env, middleware.LogRequest(l), assets)
	route.OnEveryRequest(mws...)
	route.HandleNotFound(func(wx http.ResponseWriter, rx *http.Request) {
		if format.Formats(rx)[0] == "html" && !sameRoot(rx.URL.Path, cfg.BaseURL.Path) {
			d.Redirect(wx, rx)
			return
		}

		d.Head(wx, rx, http.StatusNotFound)
	})

	return route
}

// sameRoot asserts a and b name the same path, treating "" as "/".
func sameRoot(a, b string) bool {
	return path.Clean("/"+a) == path.Clean("/"+b)
}

// defaultSessionStore constructs a session.SessionStorer to be used for storing session data:
// Redis when REDIS_URL is set, cookies otherwise.
//
// Both SESSION_*_KEY env vars must be valid hex encoded values; cf. [encoding/hex].
func defaultSessionStore(cfg Config) (session.SessionStorer, error) {
	sc := session.Config{
		AuthKey:     cfg.SessionAuthKey,
		EncryptKey:  cfg.SessionEncryptKey,
		Env:         cfg.Env,
		SessionName: cfg.SessionName,
	}

	args := []session.ServiceOpt{session.WithMaxAge(sessionMaxAge)}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", viewpoint.ErrBadConfig, redisURLEnvVar, err)
		}

		args = append(args, session.WithRedis(opts.Addr, opts.Password))
	}

	return session.NewStoreService(sc, args...)
}

// defaultServer constructs a default *http.Server.
func defaultServer(cfg Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Port,
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// recoverer wraps h so a panic escaping every other middleware still answers 500.
func recoverer(env viewpoint.Environment, l logger.Logger, h http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{l}),
		handlers.PrintRecoveryStack(env.IsDevelopment()),
	)(h)
}

// recoveryLogger adapts logger.Logger for handlers.RecoveryHandler.
type recoveryLogger struct {
	l logger.Logger
}

func (rl recoveryLogger) Println(v ...any) {
	rl.l.Error(fmt.Sprint(v...), nil)
}
