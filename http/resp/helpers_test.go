package resp_test

import (
	"bytes"
	"log"

	"github.com/xy-planning-network/viewpoint/http/resp"
	"github.com/xy-planning-network/viewpoint/logger"
	"github.com/xy-planning-network/viewpoint/view"
	vt "github.com/xy-planning-network/viewpoint/view/viewtest"
)

func newRenderer() *view.Renderer {
	return vt.NewRenderer(
		vt.NewMockFile("layouts/app.html.tmpl", []byte(`<main>{{ yield }}</main>`)),
		vt.NewMockFile("layouts/bare.html.tmpl", []byte(`<div>{{ yield }}</div>`)),
		vt.NewMockFile("posts/show.html.tmpl", []byte(`<h1>{{ .Data.Title }}</h1>`)),
		vt.NewMockFile("posts/show.json.tmpl", []byte(`{"title":{{ toJSON .Data.Title }}}`)),
		vt.NewMockFile("posts/_post.html.tmpl", []byte(`<li>{{ .Locals.post }}</li>`)),
		vt.NewMockFile("posts/_sep.html.tmpl", []byte(`|`)),
		vt.NewMockFile("posts/_box.html.tmpl", []byte(`<ul>{{ yield }}</ul>`)),
		vt.NewMockFile("posts/flashes.html.tmpl", []byte(`{{ range .Flashes }}{{ .Class }}:{{ .Msg }}{{ end }}`)),
		vt.NewMockFile("posts/user.html.tmpl", []byte(`{{ currentUser }}`)),
		vt.NewMockFile("posts/broken.html.tmpl", []byte(`{{ .Data.Title.Nope }}`)),
		vt.NewMockFile("shared/file.html.tmpl", []byte(`file`)),
	)
}

type testLogger struct {
	b *bytes.Buffer
	logger.Logger
}

func newLogger() testLogger {
	b := new(bytes.Buffer)
	return testLogger{b: b, Logger: logger.New(logger.WithLogger(log.New(b, "", 0)), logger.WithLevel(logger.LogLevelDebug))}
}

func newResponder(opts ...resp.ResponderOptFn) *resp.Responder {
	return resp.NewResponder(append([]resp.ResponderOptFn{
		resp.WithRenderer(newRenderer()),
		resp.WithLayout("app"),
		resp.WithLogger(newLogger()),
	}, opts...)...)
}

type post struct {
	Title string
}
