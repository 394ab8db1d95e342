package view

import "errors"

var (
	ErrInvalid         = errors.New("invalid")
	ErrMissingTemplate = errors.New("missing template")
	ErrNoEngine        = errors.New("no engine registered")
	ErrTooDeep         = errors.New("partials nested too deeply")
)
