package viewpoint

import "errors"

var (
	// ErrBadConfig marks a server, session store or cache that cannot start with the settings given.
	ErrBadConfig = errors.New("bad config")

	// ErrNotExist marks a record an app's handler looked up and did not find.
	ErrNotExist = errors.New("not exist")

	// ErrNotValid marks input, like an Environment, outside the accepted values.
	ErrNotValid = errors.New("not valid")
)
