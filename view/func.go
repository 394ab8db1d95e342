package view

import (
	html "html/template"
	"net/url"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xy-planning-network/viewpoint"
)

var (
	policyOnce   sync.Once
	ugcPolicy    *bluemonday.Policy
	strictPolicy *bluemonday.Policy
)

// boundFns names the functions only a Renderer can supply, per execution.
// They are present at compile time with placeholder implementations.
var boundFns = FuncMap{
	"currentUser": func() any { return nil },
	"partial":     func(string, ...any) (html.HTML, error) { return "", nil },
	"yield":       func() html.HTML { return "" },
}

// CurrentUser encloses some value representing a user.
// It returns "currentUser" as the name of the function for convenient passing to a FuncMap
// and returns a function returning the enclosed value when called.
func CurrentUser(u any) (string, func() any) {
	return "currentUser", func() any { return u }
}

// Env encloses some string representing an environment.
// It returns "env" as the name of the function for convenient passing to a FuncMap
// and returns a function returning the enclosed value when called.
func Env(e viewpoint.Environment) (string, func() string) {
	return "env", func() string { return e.String() }
}

// Nonce returns "nonce" as the name of the function for convenient passing to a FuncMap
// and returns a function generating a uuid.
func Nonce() (string, func() string) {
	return "nonce", func() string { return uuid.NewString() }
}

// RootUrl encloses the *url.URL representing the base URL of the web app.
// It returns "rootUrl" as the name of the function for convenient passing to a FuncMap
// and returns a function returning its *url.URL.String().
// If u is nil, that function will always return an empty string.
func RootUrl(u *url.URL) (string, func() string) {
	if u == nil {
		return "rootUrl", func() string { return "" }
	}

	s := u.String()
	return "rootUrl", func() string { return s }
}

// Sanitize returns "sanitize" as the name of the function for convenient passing to a FuncMap
// and returns a function that strips user-generated markup down to safe HTML.
func Sanitize() (string, func(string) html.HTML) {
	policies()
	return "sanitize", func(s string) html.HTML { return html.HTML(ugcPolicy.Sanitize(s)) }
}

// StripTags returns "stripTags" as the name of the function for convenient passing to a FuncMap
// and returns a function removing every tag from its input.
func StripTags() (string, func(string) string) {
	policies()
	return "stripTags", func(s string) string { return strictPolicy.Sanitize(s) }
}

// ToJSON returns "toJSON" as the name of the function for convenient passing to a FuncMap
// and returns a function encoding its argument as JSON.
func ToJSON() (string, func(any) (string, error)) {
	return "toJSON", func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}

		return string(b), nil
	}
}

func policies() {
	policyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		strictPolicy = bluemonday.StrictPolicy()
	})
}
