/*
Package server initializes and manages a viewpoint app with sane defaults.

The main entrypoint to package server is the [Server] type,
constructed with [New] from a [Config].
[NewConfig] reads a [Config] from environment variables,
which ought to be set in a file called ".env"
found at the same directory the application is executed from.

[*Server.Guide] begins the web server.
Upon calling [*Server.Guide], all routes configured up to that point are now active.
Stop that web server with [*Server.Shutdown] or send a signal [*Server.Guide] listens for.

Here are the available environment variables.
  - BASE_URL: the base URL the application runs on; replaces HOST & PORT
  - CACHE_TEMPLATES: whether compiled templates are cached; default: true outside DEVELOPMENT and TESTING
  - CONTACT_US_EMAIL: the email address end users can contact for help
  - DEFAULT_LAYOUT: the layout wrapping templates when a handler names none; default: application
  - ENVIRONMENT: the environment the application is running in; cf. [viewpoint.Environment]
  - HOST: the host the application is running on; default: localhost
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - PORT: the port the application should listen on; default: :3000
  - REDIS_URL: when set, sessions and cached responses are stored in Redis
  - SENTRY_DSN: when set, errors are reported to Sentry
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - SESSION_NAME: the name sessions are stored under; default: viewpoint
  - VIEW_DIR: the directory templates are found in; default: views
*/
package server
