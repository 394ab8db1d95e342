package server

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/logger"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultContactUs = "hello@example.com"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// View defaults
	cacheTemplatesEnvVar = "CACHE_TEMPLATES"
	defaultLayoutEnvVar  = "DEFAULT_LAYOUT"
	DefaultLayout        = "application"
	viewDirEnvVar        = "VIEW_DIR"
	DefaultViewDir       = "views"

	// Cache defaults
	redisURLEnvVar = "REDIS_URL"

	// Comma-separated origins, besides BASE_URL's, allowed cross-origin requests
	corsOriginsEnvVar = "CORS_ORIGINS"

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionNameEnvVar       = "SESSION_NAME"
	defaultSessionName      = "viewpoint"
)

// A Config holds every value a Server is built from.
type Config struct {
	BaseURL        *url.URL
	CacheTemplates bool
	CORSOrigins    []string
	ContactUs      string
	Env            viewpoint.Environment
	Layout         string
	LogLevel       logger.LogLevel
	Port           string
	RedisURL       string

	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	SessionAuthKey    string
	SessionEncryptKey string
	SessionName       string

	ViewDir string
}

// NewConfig reads a Config from environment variables,
// falling back to defaults for those unset.
func NewConfig() Config {
	env := viewpoint.EnvVarOrEnv(environmentEnvVar, viewpoint.Development)

	port := viewpoint.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	host := viewpoint.EnvVarOrString(hostEnvVar, DefaultHost)
	baseURL := viewpoint.EnvVarOrURL(BaseURLEnvVar, "http://"+host+port)

	lvl := logger.NewLogLevel(os.Getenv(logLevelEnvVar))
	if lvl == logger.LogLevelUnk {
		lvl = logger.LogLevelInfo
	}

	return Config{
		BaseURL:           baseURL,
		CacheTemplates:    viewpoint.EnvVarOrBool(cacheTemplatesEnvVar, env.CachesTemplates()),
		CORSOrigins:       splitList(os.Getenv(corsOriginsEnvVar)),
		ContactUs:         viewpoint.EnvVarOrString(ContactUsEnvVar, defaultContactUs),
		Env:               env,
		Layout:            viewpoint.EnvVarOrString(defaultLayoutEnvVar, DefaultLayout),
		LogLevel:          lvl,
		Port:              port,
		RedisURL:          os.Getenv(redisURLEnvVar),
		IdleTimeout:       viewpoint.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:       viewpoint.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout:      viewpoint.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
		SessionAuthKey:    os.Getenv(SessionAuthKeyEnvVar),
		SessionEncryptKey: os.Getenv(SessionEncryptKeyEnvVar),
		SessionName:       viewpoint.EnvVarOrString(sessionNameEnvVar, defaultSessionName),
		ViewDir:           viewpoint.EnvVarOrString(viewDirEnvVar, DefaultViewDir),
	}
}

// splitList splits a comma-separated list, dropping blank items.
func splitList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

// validate reports the first value in c a Server cannot be built from.
func (c Config) validate() error {
	if err := c.Env.Valid(); err != nil {
		return fmt.Errorf("%w: %s", err, environmentEnvVar)
	}

	if c.BaseURL == nil {
		return fmt.Errorf("%w: %s", viewpoint.ErrBadConfig, BaseURLEnvVar)
	}

	if c.SessionAuthKey == "" || c.SessionEncryptKey == "" {
		return fmt.Errorf("%w: %s and %s are required", viewpoint.ErrBadConfig, SessionAuthKeyEnvVar, SessionEncryptKeyEnvVar)
	}

	return nil
}
