// Command viewpoint runs a demo web server rendering every kind of response viewpoint supports.
package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/viewpoint"
	"github.com/xy-planning-network/viewpoint/format"
	"github.com/xy-planning-network/viewpoint/http/resp"
	"github.com/xy-planning-network/viewpoint/http/router"
	"github.com/xy-planning-network/viewpoint/server"
)

//go:embed all:views
var views embed.FS

type post struct {
	ID    int    `json:"id" xml:"id,attr" yaml:"id"`
	Title string `json:"title" xml:"title" yaml:"title"`
	Body  string `json:"body" xml:"body" yaml:"body"`
}

var posts = []post{
	{ID: 1, Title: "Hello, viewpoint", Body: "<p>Templates, partials and layouts.</p>"},
	{ID: 2, Title: "Negotiating formats", Body: "<p>HTML, JSON, text, XML and YAML from one handler.</p><script>alert(1)</script>"},
}

type handler struct {
	*server.Server
}

func main() {
	dir, err := fs.Sub(views, "views")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s, err := server.New(server.NewConfig(), server.WithViews(dir))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if viewpoint.EnvVarOrBool("MAINTENANCE_MODE", false) {
		s.Maintain()
	}

	h := handler{s}
	s.HandleRoutes([]router.Route{
		{Path: "/", Method: http.MethodGet, Handler: h.index},
		{Path: "/about", Method: http.MethodGet, Handler: h.about},
		{Path: "/health", Method: http.MethodGet, Handler: h.health},
		{Path: "/inline", Method: http.MethodGet, Handler: h.inline},
		{Path: "/posts", Method: http.MethodPost, Handler: h.create},
		{Path: "/posts.js", Method: http.MethodGet, Handler: h.jsonp},
		{Path: "/posts/table", Method: http.MethodGet, Handler: h.table},
		{Path: "/posts/{id:[0-9]+}", Method: http.MethodGet, Handler: h.show},
		{Path: "/posts/{id:[0-9]+}.{format}", Method: http.MethodGet, Handler: h.show},
		{Path: "/posts/{id:[0-9]+}", Method: http.MethodDelete, Handler: h.destroy},
		{Path: "/posts/{id:[0-9]+}/card", Method: http.MethodGet, Handler: h.card},
	})

	if err := s.Guide(); err != nil {
		s.EmitLogger().Error(err.Error(), nil)
		os.Exit(1)
	}
}

func (h handler) find(r *http.Request) (post, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return post{}, fmt.Errorf("%w: %s", viewpoint.ErrNotValid, err)
	}

	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}

	return post{}, fmt.Errorf("%w: post %d", viewpoint.ErrNotExist, id)
}

func (h handler) index(w http.ResponseWriter, r *http.Request) {
	h.Html(w, r, resp.Template("posts/index"), resp.Data(posts), resp.Cache("posts/index", time.Minute))
}

func (h handler) about(w http.ResponseWriter, r *http.Request) {
	h.Html(w, r, resp.File("shared/about.html.tmpl"))
}

func (h handler) health(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, resp.Text("ok"), resp.Formats("text"))
}

func (h handler) inline(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("engine") == "ft" {
		h.Render(w, r, resp.Inline("<p>{{data}}</p>"), resp.Engine("ft"), resp.Data(len(posts)), resp.Layout("application"))
		return
	}

	h.Render(w, r, resp.Inline(`<p>{{ len .Data }} posts</p>`), resp.Data(posts), resp.Layout("application"))
}

func (h handler) table(w http.ResponseWriter, r *http.Request) {
	rows := make([]map[string]any, len(posts))
	for i, p := range posts {
		rows[i] = map[string]any{"title": p.Title}
	}

	h.Render(w, r,
		resp.Partial("posts/row"),
		resp.As("post"),
		resp.Collection(rows),
		resp.Spacer("posts/divider"),
	)
}

func (h handler) show(w http.ResponseWriter, r *http.Request) {
	p, err := h.find(r)
	if errors.Is(err, viewpoint.ErrNotExist) {
		h.Head(w, r, http.StatusNotFound)
		return
	}

	if err != nil {
		h.Err(w, r, err)
		return
	}

	h.RespondTo(w, r,
		resp.On(format.HTML, resp.Template("posts/show"), resp.Data(p)),
		resp.On(format.JSON, resp.JSON(p)),
		resp.On(format.Text, resp.Template("posts/show"), resp.Data(p)),
		resp.On(format.XML, resp.XML(p)),
		resp.On(format.YAML, resp.YAML(p)),
	)
}

func (h handler) card(w http.ResponseWriter, r *http.Request) {
	p, err := h.find(r)
	if err != nil {
		h.Head(w, r, http.StatusNotFound)
		return
	}

	h.Html(w, r, resp.Template("posts/card"), resp.Data(p), resp.NoLayout())
}

func (h handler) jsonp(w http.ResponseWriter, r *http.Request) {
	cb := r.URL.Query().Get("callback")
	if cb == "" {
		h.Json(w, r, resp.Data(posts))
		return
	}

	if err := h.Render(w, r, resp.JSON(posts), resp.Callback(cb)); err != nil {
		h.Head(w, r, http.StatusBadRequest)
	}
}

func (h handler) create(w http.ResponseWriter, r *http.Request) {
	h.Redirect(w, r, resp.Success("Post saved."), resp.Code(http.StatusSeeOther))
}

func (h handler) destroy(w http.ResponseWriter, r *http.Request) {
	p, err := h.find(r)
	if err != nil {
		h.Head(w, r, http.StatusNotFound)
		return
	}

	if format.Formats(r)[0] == format.JS.Symbol {
		h.Render(w, r, resp.JS(fmt.Sprintf("document.getElementById(%q).remove();", fmt.Sprintf("post-%d", p.ID))))
		return
	}

	h.Head(w, r, http.StatusNoContent)
}
