package resp

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint/format"
	"github.com/xy-planning-network/viewpoint/view"
)

func TestSetKind(t *testing.T) {
	tcs := []struct {
		name   string
		fns    []Fn
		kind   kind
		err    error
		assert func(*testing.T, *Response)
	}{
		{"Template", []Fn{Template("show")}, kindTemplate, nil, func(t *testing.T, r *Response) {
			require.Equal(t, "show", r.name)
		}},
		{"Empty-Template", []Fn{Template("")}, kindNone, ErrMissingData, nil},
		{"Empty-Partial", []Fn{Partial("")}, kindNone, ErrMissingData, nil},
		{"Empty-File", []Fn{File("")}, kindNone, ErrMissingData, nil},
		{"JSON", []Fn{JSON(1)}, kindJSON, nil, func(t *testing.T, r *Response) {
			require.Equal(t, 1, r.value)
		}},
		{"JS", []Fn{JS("x()")}, kindJS, nil, func(t *testing.T, r *Response) {
			require.Equal(t, "x()", r.name)
		}},
		{"Template-Then-Partial", []Fn{Template("a"), Partial("b")}, kindTemplate, ErrConflict, nil},
		{"Nothing-Then-YAML", []Fn{Nothing(), YAML(1)}, kindNothing, ErrConflict, nil},
		{"Text-Twice", []Fn{Text("a"), Text("b")}, kindText, nil, func(t *testing.T, r *Response) {
			require.Equal(t, "b", r.name)
		}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := new(Response)

			// Act
			var err error
			for _, fn := range tc.fns {
				if e := fn(Responder{}, r); e != nil {
					err = e
				}
			}

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.kind, r.kind)
			if tc.assert != nil {
				tc.assert(t, r)
			}
		})
	}
}

func TestKindTemplated(t *testing.T) {
	for _, k := range []kind{kindTemplate, kindPartial, kindInline, kindFile, kindText} {
		require.True(t, k.templated(), k.String())
	}

	for _, k := range []kind{kindNone, kindJS, kindJSON, kindXML, kindYAML, kindNothing} {
		require.False(t, k.templated(), k.String())
	}
}

func TestCollection(t *testing.T) {
	r := new(Response)
	require.Nil(t, Collection(nil)(Responder{}, r))
	require.Equal(t, []any{}, r.collection)

	require.Nil(t, Collection([]int{1})(Responder{}, r))
	require.Equal(t, []int{1}, r.collection)
}

func TestLayout(t *testing.T) {
	r := new(Response)
	require.ErrorIs(t, Layout("")(Responder{}, r), ErrMissingData)

	require.Nil(t, Layout("app")(Responder{}, r))
	require.True(t, r.layoutSet)
	require.Equal(t, "app", r.layout)

	require.Nil(t, NoLayout()(Responder{}, r))
	require.True(t, r.noLayout)
	require.False(t, r.layoutSet)

	require.Nil(t, Layout("other")(Responder{}, r))
	require.False(t, r.noLayout)
	require.Equal(t, "other", r.layout)
}

func TestLocals(t *testing.T) {
	r := new(Response)
	require.Nil(t, Locals(view.Locals{"a": 1, "b": 2})(Responder{}, r))
	require.Nil(t, Locals(view.Locals{"b": 3})(Responder{}, r))
	require.Equal(t, view.Locals{"a": 1, "b": 3}, r.locals)
}

func TestFormats(t *testing.T) {
	r := new(Response)
	require.ErrorIs(t, Formats("html", "nope")(Responder{}, r), format.ErrUnknown)
	require.Nil(t, r.formats)

	require.Nil(t, Formats("json", "html")(Responder{}, r))
	require.Equal(t, []string{"json", "html"}, r.formats)
}

func TestCache(t *testing.T) {
	r := new(Response)
	require.ErrorIs(t, Cache("", time.Minute)(Responder{}, r), ErrInvalid)
	require.Nil(t, Cache("k", time.Minute)(Responder{}, r))
	require.Equal(t, "k", r.cacheKey)
	require.Equal(t, time.Minute, r.cacheTTL)
}

func TestCallback(t *testing.T) {
	tcs := []struct {
		fn    string
		valid bool
	}{
		{"cb", true},
		{"app.handlers.cb", true},
		{"$jsonp_1", true},
		{"cb[0]", true},
		{"", false},
		{"1cb", false},
		{"alert(1)", false},
		{"a;b", false},
	}

	for _, tc := range tcs {
		t.Run(tc.fn, func(t *testing.T) {
			err := Callback(tc.fn)(Responder{}, new(Response))
			if tc.valid {
				require.Nil(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestToRoot(t *testing.T) {
	// Arrange
	root, err := url.Parse("https://example.com")
	require.Nil(t, err)
	d := Responder{rootUrl: root}
	r := new(Response)

	// Act
	require.Nil(t, ToRoot()(d, r))
	require.Nil(t, Param("a", "b")(d, r))

	// Assert
	require.Equal(t, "https://example.com?a=b", r.url.String())
	require.Equal(t, "https://example.com", root.String())
}

func TestFlashNoSession(t *testing.T) {
	r := &Response{w: httptest.NewRecorder(), r: httptest.NewRequest(http.MethodGet, "/", nil)}
	require.ErrorIs(t, Success("ok")(Responder{}, r), ErrNotFound)
	require.Equal(t, http.StatusOK, r.code)
}

func TestViewOptionsLayout(t *testing.T) {
	d := &Responder{}
	d.templates.layout = "app"

	tcs := []struct {
		name     string
		r        *Response
		layout   string
		optional bool
	}{
		{"Template", &Response{kind: kindTemplate}, "app", true},
		{"File", &Response{kind: kindFile}, "app", true},
		{"Inline", &Response{kind: kindInline}, "", false},
		{"Text", &Response{kind: kindText}, "", false},
		{"Partial", &Response{kind: kindPartial}, "", false},
		{"Partial-Explicit", &Response{kind: kindPartial, layout: "box", layoutSet: true}, "box", false},
		{"Template-Explicit", &Response{kind: kindTemplate, layout: "bare", layoutSet: true}, "bare", false},
		{"Template-None", &Response{kind: kindTemplate, noLayout: true}, "", false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tc.r.r = httptest.NewRequest(http.MethodGet, "/", nil)
			o := d.viewOptions(tc.r)
			require.Equal(t, tc.layout, o.Layout)
			require.Equal(t, tc.optional, o.LayoutOptional)
			require.Equal(t, []string{"html"}, o.Formats)
		})
	}
}
