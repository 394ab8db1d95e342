/*
Package logger provides logging functionality to a viewpoint app by defining the required behavior in [Logger]
and providing an implementation of it with [ViewLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
LogLevel is the type to use to represent those levels.
An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, [ViewLogger] accepts a [LogLevel],
and if initialized with [LogLevelWarn],
only [*ViewLogger.Warn], [*ViewLogger.Error], and [*ViewLogger.Fatal] produce messages.

# ViewLogger

Log messages emitted by [ViewLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2024/04/28 15:55:21 [DEBUG] view/render.go:143 'rendered posts/show.html.tmpl within layouts/application' log_context: {"data":{"duration":"1.2ms"}}

The log context is a JSON-encoded [*LogContext].
It carries data inessential to the message proper,
such as the template being rendered or the request being served.

# SentryLogger

When the SENTRY_DSN environment variable is set, [New] wraps the [ViewLogger] in a [SentryLogger],
shipping errors found in a [*LogContext] at warn level and above to Sentry.
*/
package logger
