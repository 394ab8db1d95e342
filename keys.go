package viewpoint

type Key string

const (
	// CurrentUserKey stashes the currentUser for a session.
	CurrentUserKey Key = "CurrentUserKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"

	// TrackerKey stashes whether an HTTP request has been responded to.
	TrackerKey Key = "TrackerKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "viewpoint context key: " + string(k)
}
