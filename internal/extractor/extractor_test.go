package extractor

import (
	"net/url"
	"testing"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!doctype html>
<html>
<head>
  <link rel="stylesheet" href="/static/site.css">
  <script src="/static/viewer.js"></script>
</head>
<body>
  <a href="/products/2">Next</a>
  <a href="#reviews">Reviews</a>
  <a href="javascript:void(0)">Noop</a>
  <a href="mailto:sales@example.com">Mail</a>
  <model-viewer src="models/chair.glb" ios-src="models/chair.usdz"></model-viewer>
  <div class="lazy" data-src="https://cdn.example.com/scan.ply#top"></div>
  <img srcset="/img/a.png 1x, /img/b.png 2x">
  <a href="/products/2">Duplicate</a>
  <script>fetch("/api/models/table.stl")</script>
</body>
</html>`

func urlsOf(extracted []models.ExtractedURL) []string {
	var out []string
	for _, u := range extracted {
		out = append(out, u.AbsoluteURL)
	}
	return out
}

func TestURLValidator_Resolve(t *testing.T) {
	validator := NewURLValidator(zerolog.Nop())
	base, _ := url.Parse("https://shop.example.com/products/1")

	tests := []struct {
		raw      string
		expected string
	}{
		{"/path", "https://shop.example.com/path"},
		{"models/a.glb", "https://shop.example.com/products/models/a.glb"},
		{"//cdn.example.com/a.glb", "https://cdn.example.com/a.glb"},
		{"https://cdn.example.com/a.glb#frag", "https://cdn.example.com/a.glb"},
		{"  https://cdn.example.com/b.glb?v=1  ", "https://cdn.example.com/b.glb?v=1"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := validator.Resolve(tt.raw, base)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestURLValidator_Rejects(t *testing.T) {
	validator := NewURLValidator(zerolog.Nop())
	base, _ := url.Parse("https://shop.example.com/")

	for _, raw := range []string{"", "#top", "javascript:alert(1)", "data:text/plain,hi", "mailto:a@b.c", "ftp://x.example.com/a.glb"} {
		_, err := validator.Resolve(raw, base)
		assert.ErrorIs(t, err, common.ErrInvalidInput, raw)
	}

	_, err := validator.Resolve("relative/a.glb", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHTMLExtractor_Extract(t *testing.T) {
	he := NewHTMLExtractor(NewURLValidator(zerolog.Nop()), zerolog.Nop())
	base, _ := url.Parse("https://shop.example.com/products/1")

	res, err := he.Extract(base.String(), []byte(productPage), base)
	require.NoError(t, err)

	urls := urlsOf(res.URLs)
	assert.ElementsMatch(t, []string{
		"https://shop.example.com/products/2",
		"https://shop.example.com/static/site.css",
		"https://shop.example.com/static/viewer.js",
		"https://shop.example.com/products/models/chair.glb",
		"https://shop.example.com/products/models/chair.usdz",
		"https://cdn.example.com/scan.ply",
		"https://shop.example.com/img/a.png",
		"https://shop.example.com/img/b.png",
	}, urls)

	for _, u := range res.URLs {
		switch u.AbsoluteURL {
		case "https://shop.example.com/products/2":
			assert.Equal(t, models.LinkKindPage, u.Kind)
			assert.Equal(t, "a[href]", u.Context)
		case "https://shop.example.com/products/models/chair.glb":
			assert.Equal(t, models.LinkKindAsset, u.Kind)
			assert.Equal(t, "model-viewer[src]", u.Context)
			assert.Equal(t, "models/chair.glb", u.RawURL)
		}
	}

	require.Len(t, res.InlineScripts, 1)
	assert.Contains(t, res.InlineScripts[0], "table.stl")
}

func TestHTMLExtractor_BaseHref(t *testing.T) {
	he := NewHTMLExtractor(NewURLValidator(zerolog.Nop()), zerolog.Nop())
	base, _ := url.Parse("https://shop.example.com/products/1")
	page := `<html><head><base href="https://assets.example.com/v2/"></head>
<body><model-viewer src="robot.glb"></model-viewer></body></html>`

	res, err := he.Extract(base.String(), []byte(page), base)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://assets.example.com/v2/robot.glb"}, urlsOf(res.URLs))
}

func TestExtractor_HTMLWithInlineScripts(t *testing.T) {
	e := NewExtractor(true, zerolog.Nop())

	urls, err := e.ExtractFromResponse("https://shop.example.com/products/1", "text/html; charset=utf-8", []byte(productPage))
	require.NoError(t, err)
	assert.Contains(t, urlsOf(urls), "https://shop.example.com/api/models/table.stl")

	seen := map[string]bool{}
	for _, u := range urls {
		assert.False(t, seen[u.AbsoluteURL], "duplicate %s", u.AbsoluteURL)
		seen[u.AbsoluteURL] = true
	}
}

func TestExtractor_JSDisabled(t *testing.T) {
	e := NewExtractor(false, zerolog.Nop())

	urls, err := e.ExtractFromResponse("https://shop.example.com/products/1", "text/html", []byte(productPage))
	require.NoError(t, err)
	assert.NotContains(t, urlsOf(urls), "https://shop.example.com/api/models/table.stl")

	urls, err = e.ExtractFromResponse("https://shop.example.com/app.js", "application/javascript", []byte(`fetch("/a.glb")`))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestExtractor_JavaScript(t *testing.T) {
	e := NewExtractor(true, zerolog.Nop())
	script := []byte(`
function load() {
  fetch("/models/engine.glb").then(r => r.arrayBuffer());
}`)

	urls, err := e.ExtractFromResponse("https://shop.example.com/static/viewer.js", "", script)
	require.NoError(t, err)
	require.Contains(t, urlsOf(urls), "https://shop.example.com/models/engine.glb")
	for _, u := range urls {
		assert.Equal(t, models.LinkKindAsset, u.Kind)
		assert.Contains(t, u.Context, "js:")
	}
}

func TestExtractor_OtherContent(t *testing.T) {
	e := NewExtractor(true, zerolog.Nop())
	urls, err := e.ExtractFromResponse("https://shop.example.com/a.glb", "model/gltf-binary", []byte("glTF"))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestIsJavaScript(t *testing.T) {
	assert.True(t, IsJavaScript("https://x.example.com/a", "text/javascript"))
	assert.True(t, IsJavaScript("https://x.example.com/app.mjs?v=1", ""))
	assert.False(t, IsJavaScript("https://x.example.com/model.glb", "application/octet-stream"))
}
