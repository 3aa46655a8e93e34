// internal/dom/xpath_test.go
package dom

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueXPath(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<html><body>
		<div><p>one</p><p>two</p></div>
		<section id="main"><ul><li>a</li><li>b</li></ul></section>
		<span id="it's &quot;quoted&quot;"></span>
	</body></html>`))
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"positional path", "//div/p[2]", "/html[1]/body[1]/div[1]/p[2]"},
		{"anchored on id", "//section[@id='main']/ul/li[2]", "//*[@id='main']/ul[1]/li[2]"},
		{"element with id", "//section", "//*[@id='main']"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := htmlquery.FindOne(doc, tt.query)
			require.NotNil(t, n)
			got := UniqueXPath(n)
			assert.Equal(t, tt.want, got)
			assert.Same(t, n, htmlquery.FindOne(doc, got), "the generated path selects the node")
		})
	}

	t.Run("repeated ids fall back to positions", func(t *testing.T) {
		dup, err := htmlquery.Parse(strings.NewReader(`<html><body>
			<div id="x"><span></span></div>
			<div id="x"><span></span></div>
			<p id="once"><i id="x"></i></p>
		</body></html>`))
		require.NoError(t, err)

		spans := htmlquery.Find(dup, "//span")
		require.Len(t, spans, 2)
		first, second := UniqueXPath(spans[0]), UniqueXPath(spans[1])
		assert.Equal(t, "/html[1]/body[1]/div[1]/span[1]", first)
		assert.Equal(t, "/html[1]/body[1]/div[2]/span[1]", second)
		assert.Same(t, spans[0], htmlquery.FindOne(dup, first))
		assert.Same(t, spans[1], htmlquery.FindOne(dup, second))

		// A unique id further up still anchors the path.
		i := htmlquery.FindOne(dup, "//i")
		require.NotNil(t, i)
		got := UniqueXPath(i)
		assert.Equal(t, "//*[@id='once']/i[1]", got)
		assert.Same(t, i, htmlquery.FindOne(dup, got))
	})

	t.Run("quotes in ids round-trip", func(t *testing.T) {
		n := htmlquery.FindOne(doc, "//span")
		require.NotNil(t, n)
		assert.Same(t, n, htmlquery.FindOne(doc, UniqueXPath(n)))
	})

	t.Run("nil and document nodes", func(t *testing.T) {
		assert.Empty(t, UniqueXPath(nil))
		assert.Equal(t, "/", UniqueXPath(doc))
	})
}
