package session

import (
	"net/http"
)

const (
	// Default Flash Class
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"

	// Default Flash Msg
	BadInputMsg   = "Hmm... check your form, something isn't correct."
	DefaultErrMsg = "Uh oh! We've run into an issue."
	NoAccessMsg   = "Oops, sending you back somewhere safe."
)

var ContactUsErr = DefaultErrMsg + " Please contact us at %s if the issue persists."

// The FlashSessionable wraps methods for reading and writing Flash messages kept between requests.
type FlashSessionable interface {
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

// A Flash is a one-time message shown on the next page rendered for a user.
type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}

// Generate builds the CSS classes for rendering a Flash,
// given the base class and, for each kind of Flash, its modifier.
func (f Flash) Generate(base, err, info, success, warn string) string {
	switch f.Class {
	case FlashError:
		return base + " " + err
	case FlashInfo:
		return base + " " + info
	case FlashSuccess:
		return base + " " + success
	case FlashWarning:
		return base + " " + warn
	default:
		return base
	}
}
