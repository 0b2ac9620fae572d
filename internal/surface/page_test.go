package surface

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteResources(t *testing.T) {
	html := `<link href="panel.css"><script src="./js/panel.js"></script>` +
		`<img src="https://cdn.example/x.png"><link rel="icon" href="data:,">`

	got := RewriteResources(html, assetURL)
	assert.Equal(t, `<link href="/assets/panel.css"><script src="/assets/js/panel.js"></script>`+
		`<img src="https://cdn.example/x.png"><link rel="icon" href="data:,">`, got)
}

func TestAssetURL_StaysUnderAssets(t *testing.T) {
	assert.Equal(t, "/assets/secret", assetURL("../../secret"))
	assert.Equal(t, "/assets/a/b.css", assetURL("a/./b.css"))
}

func TestLoadPage(t *testing.T) {
	fsys := fstest.MapFS{"p.html": {Data: []byte(`<script src="app.js"></script>`)}}
	page, err := LoadPage(fsys, "p.html", func(rel string) string { return "vscode-resource:/" + rel })
	require.NoError(t, err)
	assert.Equal(t, `<script src="vscode-resource:/app.js"></script>`, page)

	_, err = LoadPage(fsys, "missing.html", assetURL)
	assert.Error(t, err)
}

func TestEmbeddedPageReferencesAssets(t *testing.T) {
	page, err := LoadPage(webFS, "web/panel.html", assetURL)
	require.NoError(t, err)
	assert.Contains(t, page, `href="/assets/panel.css"`)
	assert.Contains(t, page, `src="/assets/panel.js"`)
}
