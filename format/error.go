package format

import "errors"

var (
	ErrNotAcceptable = errors.New("not acceptable")
	ErrUnknown       = errors.New("unknown format")
)
