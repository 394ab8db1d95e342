/*
Package resp provides a high-level API for responding to HTTP requests
with an easy way to configure the responses application-wide.

Every response goes through Responder.Render, which renders exactly one of:
  - a template, looked up by name and prefixes in the request's formats
  - a partial, once or over a collection
  - inline template source
  - a template file at an exact path
  - plain text
  - JSON, optionally wrapped in a JSONP callback
  - XML
  - YAML
  - nothing at all

Layouts wrap templates and files by default, and text, inline source and partials when asked.
Respond to a request once: a second Render, Redirect or Head returns ErrDoubleRender
when the request passed through Track.
*/
package resp
