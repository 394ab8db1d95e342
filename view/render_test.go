package view_test

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint/logger"
	"github.com/xy-planning-network/viewpoint/view"
	vt "github.com/xy-planning-network/viewpoint/view/viewtest"
)

func newRenderer(opts ...view.RendererOptFn) *view.Renderer {
	mfs := vt.NewMockFS(
		vt.NewMockFile("layouts/app.html.tmpl", []byte(`<main>{{ yield }}</main>`)),
		vt.NewMockFile("posts/show.html.tmpl", []byte(`<h1>{{ .Data.Title }}</h1>`)),
		vt.NewMockFile("posts/show.text.tmpl", []byte(`{{ .Data.Title }}`)),
		vt.NewMockFile("posts/show.json.tmpl", []byte(`{"title":{{ toJSON .Data.Title }}}`)),
		vt.NewMockFile("posts/index.html.tmpl", []byte(`<ul>{{ partial "post" "post" "x" "post_counter" 9 }}</ul>`)),
		vt.NewMockFile("posts/odd.html.tmpl", []byte(`{{ partial "post" "post" }}`)),
		vt.NewMockFile("posts/_post.html.tmpl", []byte(`<li>{{ .Locals.post }}-{{ .Locals.post_counter }}</li>`)),
		vt.NewMockFile("posts/_sep.html.tmpl", []byte(`|`)),
		vt.NewMockFile("posts/_box.html.tmpl", []byte(`[{{ yield }}]`)),
		vt.NewMockFile("posts/_loop.html.tmpl", []byte(`{{ partial "loop" }}`)),
		vt.NewMockFile("posts/plain.tmpl", []byte(`{{ .Format }}`)),
		vt.NewMockFile("greet.html.ft", []byte(`<p>{{ name }}</p>`)),
		vt.NewMockFile("hello.html.pongo", []byte(`<p>{{ data.Title }}</p>`)),
		vt.NewMockFile("hello.text.pongo", []byte(`{{ data.Title }}`)),
		vt.NewMockFile("hello.json.pongo", []byte(`{"title":"{{ data.Title }}"}`)),
		vt.NewMockFile("shared/file.html.tmpl", []byte(`file:{{ .Data.Title }}`)),
	)

	return view.NewRenderer(append([]view.RendererOptFn{view.WithFS(mfs)}, opts...)...)
}

var post = map[string]any{"Title": "<Hi>"}

func TestRenderTemplate(t *testing.T) {
	tcs := []struct {
		name   string
		opts   view.Options
		expect string
		result view.Result
	}{
		{
			name:   "HTML",
			opts:   view.Options{Name: "show", Prefixes: []string{"posts"}, Data: post},
			expect: "<h1>&lt;Hi&gt;</h1>",
			result: view.Result{Format: "html", Template: "posts/show.html.tmpl"},
		},
		{
			name:   "Text-Unescaped",
			opts:   view.Options{Name: "posts/show", Formats: []string{"text"}, Data: post},
			expect: "<Hi>",
			result: view.Result{Format: "text", Template: "posts/show.text.tmpl"},
		},
		{
			name:   "JSON-Second-Choice",
			opts:   view.Options{Name: "posts/show", Formats: []string{"csv", "json"}, Data: map[string]any{"Title": "Hi"}},
			expect: `{"title":"Hi"}`,
			result: view.Result{Format: "json", Template: "posts/show.json.tmpl"},
		},
		{
			name:   "No-Format-Segment",
			opts:   view.Options{Name: "posts/plain", Formats: []string{"csv"}},
			expect: "csv",
			result: view.Result{Format: "csv", Template: "posts/plain.tmpl"},
		},
		{
			name:   "Layout",
			opts:   view.Options{Name: "posts/show", Layout: "app", Data: post},
			expect: "<main><h1>&lt;Hi&gt;</h1></main>",
			result: view.Result{Format: "html", Template: "posts/show.html.tmpl", Layout: "layouts/app.html.tmpl"},
		},
		{
			name:   "Optional-Layout-Missing",
			opts:   view.Options{Name: "posts/show", Layout: "nope", LayoutOptional: true, Data: post},
			expect: "<h1>&lt;Hi&gt;</h1>",
			result: view.Result{Format: "html", Template: "posts/show.html.tmpl"},
		},
		{
			name:   "Partial-Func",
			opts:   view.Options{Name: "posts/index"},
			expect: "<ul><li>x-9</li></ul>",
			result: view.Result{Format: "html", Template: "posts/index.html.tmpl"},
		},
		{
			name:   "File",
			opts:   view.Options{Kind: view.KindFile, Name: "/shared/file.html.tmpl", Data: post},
			expect: "file:&lt;Hi&gt;",
			result: view.Result{Format: "html", Template: "shared/file.html.tmpl"},
		},
		{
			name:   "Inline",
			opts:   view.Options{Kind: view.KindInline, Name: `{{ .Locals.x }}!`, Locals: view.Locals{"x": 1}},
			expect: "1!",
			result: view.Result{Format: "html", Template: "inline"},
		},
		{
			name: "Inline-Layout",
			opts: view.Options{
				Kind:   view.KindInline,
				Name:   `{{ .Locals.x }}`,
				Locals: view.Locals{"x": "in"},
				Layout: "app",
			},
			expect: "<main>in</main>",
			result: view.Result{Format: "html", Template: "inline", Layout: "layouts/app.html.tmpl"},
		},
		{
			name:   "Text-Layout",
			opts:   view.Options{Kind: view.KindText, Name: "{{ not a template }}", Layout: "app"},
			expect: "<main>{{ not a template }}</main>",
			result: view.Result{Format: "html", Template: "text", Layout: "layouts/app.html.tmpl"},
		},
		{
			name:   "Fasttemplate",
			opts:   view.Options{Name: "greet", Locals: view.Locals{"name": "<x>"}},
			expect: "<p>&lt;x&gt;</p>",
			result: view.Result{Format: "html", Template: "greet.html.ft"},
		},
		{
			name:   "Pongo2",
			opts:   view.Options{Name: "hello", Data: post},
			expect: "<p>&lt;Hi&gt;</p>",
			result: view.Result{Format: "html", Template: "hello.html.pongo"},
		},
		{
			name:   "Pongo2-Text-Unescaped",
			opts:   view.Options{Name: "hello", Formats: []string{"text"}, Data: post},
			expect: "<Hi>",
			result: view.Result{Format: "text", Template: "hello.text.pongo"},
		},
		{
			name:   "Pongo2-JSON-Unescaped",
			opts:   view.Options{Name: "hello", Formats: []string{"json"}, Data: post},
			expect: `{"title":"<Hi>"}`,
			result: view.Result{Format: "json", Template: "hello.json.pongo"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			rd := newRenderer()
			b := new(bytes.Buffer)

			// Act
			res, err := rd.Render(context.Background(), b, tc.opts)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.expect, b.String())
			require.Equal(t, tc.result, res)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	tcs := []struct {
		name string
		opts view.Options
		err  error
	}{
		{"Missing-Template", view.Options{Name: "posts/nope"}, view.ErrMissingTemplate},
		{"Missing-Format", view.Options{Name: "posts/show", Formats: []string{"xml"}}, view.ErrMissingTemplate},
		{"Missing-Layout", view.Options{Name: "posts/show", Layout: "nope"}, view.ErrMissingTemplate},
		{"Missing-File", view.Options{Kind: view.KindFile, Name: "nope.tmpl"}, view.ErrMissingTemplate},
		{"Missing-Partial", view.Options{Kind: view.KindPartial, Name: "show", Prefixes: []string{"posts"}}, view.ErrMissingTemplate},
		{"Unknown-Engine", view.Options{Kind: view.KindInline, Name: "x", Engine: "erb"}, view.ErrNoEngine},
		{"Odd-Locals", view.Options{Name: "posts/odd"}, view.ErrInvalid},
		{"Not-A-Collection", view.Options{Kind: view.KindPartial, Name: "posts/post", Collection: 1}, view.ErrInvalid},
		{"Recursive-Partial", view.Options{Kind: view.KindPartial, Name: "posts/loop"}, view.ErrTooDeep},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			rd := newRenderer()

			// Act
			_, err := rd.Render(context.Background(), new(bytes.Buffer), tc.opts)

			// Assert
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestRenderPartial(t *testing.T) {
	tcs := []struct {
		name   string
		opts   view.Options
		expect string
		empty  bool
	}{
		{
			name:   "Object",
			opts:   view.Options{Name: "posts/post", Object: "a"},
			expect: "<li>a-</li>",
		},
		{
			name:   "Object-Overrides-Local",
			opts:   view.Options{Name: "posts/post", Object: "a", Locals: view.Locals{"post": "b"}},
			expect: "<li>a-</li>",
		},
		{
			name:   "Collection",
			opts:   view.Options{Name: "post", Prefixes: []string{"posts"}, Collection: []string{"a", "b"}},
			expect: "<li>a-0</li><li>b-1</li>",
		},
		{
			name:   "Collection-Array",
			opts:   view.Options{Name: "posts/post", Collection: [2]int{7, 8}},
			expect: "<li>7-0</li><li>8-1</li>",
		},
		{
			name:   "Collection-Spacer",
			opts:   view.Options{Name: "posts/post", Collection: []string{"a", "b", "c"}, Spacer: "sep"},
			expect: "<li>a-0</li>|<li>b-1</li>|<li>c-2</li>",
		},
		{
			name:   "Collection-Layout",
			opts:   view.Options{Name: "posts/post", Collection: []string{"a", "b"}, Layout: "box"},
			expect: "[<li>a-0</li>][<li>b-1</li>]",
		},
		{
			name:   "Collection-As",
			opts:   view.Options{Name: "posts/post", Collection: []string{"a"}, As: "other", Locals: view.Locals{"post": "p"}},
			expect: "<li>p-</li>",
		},
		{
			name:  "Empty-Collection",
			opts:  view.Options{Name: "posts/post", Collection: []string{}},
			empty: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			rd := newRenderer()
			b := new(bytes.Buffer)
			tc.opts.Kind = view.KindPartial

			// Act
			res, err := rd.Render(context.Background(), b, tc.opts)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.expect, b.String())
			require.Equal(t, tc.empty, res.Empty)
		})
	}
}

func TestRenderCanceled(t *testing.T) {
	// Arrange
	rd := newRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := rd.Render(ctx, new(bytes.Buffer), view.Options{Name: "posts/show"})

	// Assert
	require.ErrorIs(t, err, context.Canceled)
}

func TestRendererAddFn(t *testing.T) {
	// Arrange
	rd := newRenderer(view.WithCache(true))
	b := new(bytes.Buffer)
	rd.AddFn("shout", func(s string) string { return s + "!" })

	// Act
	_, err := rd.Render(context.Background(), b, view.Options{Kind: view.KindInline, Name: `{{ shout "hey" }}`})

	// Assert
	require.Nil(t, err)
	require.Equal(t, "hey!", b.String())
}

func TestRendererCurrentUser(t *testing.T) {
	// Arrange
	rd := newRenderer()
	b := new(bytes.Buffer)

	// Act
	_, err := rd.Render(context.Background(), b, view.Options{
		Kind: view.KindInline,
		Name: `{{ with currentUser }}{{ . }}{{ else }}anon{{ end }}`,
		User: "ada",
	})

	// Assert
	require.Nil(t, err)
	require.Equal(t, "ada", b.String())
}

func TestResolverCache(t *testing.T) {
	// Arrange
	cached := newRenderer(view.WithCache(true)).Resolver()
	uncached := newRenderer().Resolver()

	// Act
	a, err := cached.Find("show", []string{"posts"}, false, []string{"html"})
	require.Nil(t, err)
	b, err := cached.Find("show", []string{"posts"}, false, []string{"html"})
	require.Nil(t, err)
	c, err := uncached.Find("show", []string{"posts"}, false, []string{"html"})
	require.Nil(t, err)
	d, err := uncached.Find("show", []string{"posts"}, false, []string{"html"})
	require.Nil(t, err)

	// Assert
	require.Same(t, a, b)
	require.NotSame(t, c, d)

	cached.Reset()
	e, err := cached.Find("show", []string{"posts"}, false, []string{"html"})
	require.Nil(t, err)
	require.NotSame(t, a, e)
}

func TestResolverFallback(t *testing.T) {
	// Arrange
	rs := newRenderer().Resolver()

	// Act
	tmpl, err := rs.Find("error", nil, false, nil)

	// Assert
	require.Nil(t, err)
	require.Equal(t, "error.html.tmpl", tmpl.Path)
	require.Equal(t, "html", tmpl.Format)
	require.Equal(t, view.GoExt, tmpl.Engine)
}

func TestRenderLogs(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := logger.New(logger.WithLogger(log.New(b, "", 0)), logger.WithLevel(logger.LogLevelDebug))
	rd := newRenderer(view.WithLogger(l))
	w := new(bytes.Buffer)

	// Act
	_, err := rd.Render(context.Background(), w, view.Options{Name: "posts/show", Layout: "app", Data: post})

	// Assert
	require.Nil(t, err)
	require.Contains(t, b.String(), "rendered posts/show.html.tmpl")
	require.Contains(t, b.String(), "rendered posts/show.html.tmpl within layouts/app.html.tmpl")
	require.Contains(t, b.String(), "duration")
}
