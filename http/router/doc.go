/*
Package router routes requests to the handlers rendering a viewpoint app's responses.

[*Router] utilizes [mux.Router] for its implementation,
and so functions as thin wrapper around that package.

A [Router] leverages a standardized data model - a [Route] -
when registering how requests should be routed.
A path and an HTTP method comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route.
Before a request gets to a handler, though,
any middlewares added to the Route are called in the order they appear.

Many routes for a web server share identical middleware stacks,
so a [Router] provides conveniences for making a single call to register many logically associated Routes.
*/
package router
