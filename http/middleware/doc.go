/*
The middleware package defines what a middleware is in viewpoint and a set of basic middlewares.

The available middlewares are:
- CORS
- ForceHTTPS
- InjectIPAddress
- InjectSession
- InjectUser
- LogRequest
- RateLimit
- ReportPanic
- RequestID
- TrackRender

Due to the amount of configuration required, middleware does not provide a default middleware chain
Instead, the following can be copy-pasted:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.TrackRender(),
		middleware.RateLimit(vs),
		middleware.ForceHTTPS(env),
		middleware.InjectIPAddress(),
		middleware.RequestID(),
		middleware.LogRequest(log),
		middleware.InjectSession(sessionStore),
		middleware.InjectUser(findUser),
	}
*/
package middleware
