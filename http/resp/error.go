package resp

import "errors"

var (
	ErrBadConfig    = errors.New("bad config")
	ErrConflict     = errors.New("conflicting render options")
	ErrDone         = errors.New("request ctx done")
	ErrDoubleRender = errors.New("render or redirect called multiple times in this request")
	ErrInvalid      = errors.New("invalid")
	ErrMissingData  = errors.New("missing data")
	ErrNotFound     = errors.New("not found")
	ErrNoUser       = errors.New("no user")
)
