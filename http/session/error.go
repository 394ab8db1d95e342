package session

import (
	"errors"
	"fmt"
)

// ErrNotValid marks a Session that does not wrap a session from the store,
// e.g., the zero value or one returned alongside a GetSession error.
var ErrNotValid = errors.New("not valid")

var errNoSession = fmt.Errorf("%w: no session loaded", ErrNotValid)
