package format_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint/format"
)

func newRequest(target, accept string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		r.Header.Set("Accept", accept)
	}

	return r
}

func TestFormats(t *testing.T) {
	tcs := []struct {
		name     string
		r        *http.Request
		expected []string
	}{
		{"Nil", nil, []string{"html"}},
		{"No-Accept", newRequest("/posts", ""), []string{"html"}},
		{"Query", newRequest("/posts?format=json", "text/html"), []string{"json"}},
		{"Query-Unknown", newRequest("/posts?format=PDF", ""), []string{"pdf"}},
		{"Extension", newRequest("/posts/1.xml", "text/html"), []string{"xml"}},
		{"Extension-Unknown", newRequest("/files/report.v2", ""), []string{"html"}},
		{"Accept", newRequest("/posts", "application/json"), []string{"json"}},
		{"Accept-Synonym", newRequest("/posts", "text/x-json"), []string{"json"}},
		{"Accept-Quality", newRequest("/posts", "application/xml;q=0.5, application/json"), []string{"json", "xml"}},
		{"Accept-Zero", newRequest("/posts", "application/json;q=0, text/plain"), []string{"text"}},
		{"Accept-Unknown", newRequest("/posts", "application/vnd.unknown"), []string{"html"}},
		{"Accept-Partial-Wildcard", newRequest("/posts", "text/*"), []string{"html"}},
		{
			"Browser",
			newRequest("/posts", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"),
			[]string{"html", "xml"},
		},
		{"Wildcard", newRequest("/posts", "*/*"), []string{"html"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, format.Formats(tc.r))
		})
	}
}

func TestNegotiate(t *testing.T) {
	tcs := []struct {
		name     string
		r        *http.Request
		offers   []format.Type
		expected format.Type
		err      error
	}{
		{"No-Offers", newRequest("/posts", ""), nil, format.Type{}, format.ErrNotAcceptable},
		{"Nil-Request", nil, []format.Type{format.JSON}, format.JSON, nil},
		{"No-Accept", newRequest("/posts", ""), []format.Type{format.HTML, format.JSON}, format.HTML, nil},
		{"Wildcard", newRequest("/posts", "*/*"), []format.Type{format.JSON, format.HTML}, format.JSON, nil},
		{"Exact", newRequest("/posts", "application/json"), []format.Type{format.HTML, format.JSON}, format.JSON, nil},
		{"Synonym", newRequest("/posts", "text/xml"), []format.Type{format.HTML, format.XML}, format.XML, nil},
		{"Partial-Wildcard", newRequest("/posts", "application/*"), []format.Type{format.HTML, format.YAML}, format.YAML, nil},
		{
			"Preference",
			newRequest("/posts", "text/html;q=0.4, application/xml"),
			[]format.Type{format.HTML, format.XML},
			format.XML,
			nil,
		},
		{"Extension", newRequest("/posts.json", "text/html"), []format.Type{format.HTML, format.JSON}, format.JSON, nil},
		{"Extension-Not-Offered", newRequest("/posts.xml", ""), []format.Type{format.HTML}, format.Type{}, format.ErrNotAcceptable},
		{"Unacceptable", newRequest("/posts", "image/png"), []format.Type{format.HTML}, format.Type{}, format.ErrNotAcceptable},
		{"Zero-Quality", newRequest("/posts", "text/html;q=0"), []format.Type{format.HTML}, format.Type{}, format.ErrNotAcceptable},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := format.Negotiate(tc.r, tc.offers...)
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expected, actual)
		})
	}
}
