package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeProvider() symbols.Provider {
	return symbols.NewStatic(symbols.Table{Namespaces: []symbols.Namespace{{
		Path:          DefaultNamespace,
		Constructible: true,
		Members: []symbols.Member{
			{Name: "Blur", Kind: symbols.KindNode},
			{Name: "Grade", Kind: symbols.KindNode},
			{Name: "merge2", Kind: symbols.KindFunction},
			{Name: "_internal", Kind: symbols.KindNode},
			{Name: "version", Kind: symbols.KindObject},
		},
	}}})
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestCategorize(t *testing.T) {
	testCases := []struct {
		name     string
		category string
	}{
		{"Transform", "Transform"},
		{"Crop", "Transform"},
		{"ColorCorrect", "Color"},
		{"Grade", "Color"},
		{"Merge2", "Merge"},
		{"Blur", "Filter"},
		{"Shuffle", "Channel"},
		{"Keyer", "Keyer"},
		{"Primatte_Chroma", "Keyer"},
		{"RotoPaint", "Draw"},
		{"FrameHold", "Time"},
		{"Dot", Other},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.category, Categorize(tc.name))
		})
	}
}

func TestBuildFromProviderAndPlugins(t *testing.T) {
	plugins := t.TempDir()
	touch(t, plugins, "MyGlow.gizmo", "fastBlur.so", "NST_Thing.gizmo", "A_RestoreEdgePremult.gizmo", "notes.txt", "Blur.dll")
	cachePath := filepath.Join(t.TempDir(), "cache", "nodes.toml")

	c := New(nodeProvider(), Options{CachePath: cachePath, PluginDirs: []string{plugins, "/does/not/exist"}})

	assert.Equal(t, []string{"Blur", "fastBlur", "Grade", "merge2", "MyGlow"}, c.Names())
	assert.Equal(t, 5, c.Len())

	cat, ok := c.Category("fastBlur")
	require.True(t, ok)
	assert.Equal(t, "Filter", cat)

	cat, ok = c.Category("MyGlow")
	require.True(t, ok)
	assert.Equal(t, Other, cat)

	_, ok = c.Category("version")
	assert.False(t, ok)

	assert.FileExists(t, cachePath)
}

func TestCacheIsPreferred(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "nodes.toml")
	cache := "[[node]]\nname = \"Cached\"\ncategory = \"Merge\"\n\n[[node]]\nname = \"NoCategory\"\n"
	require.NoError(t, os.WriteFile(cachePath, []byte(cache), 0o644))

	c := New(nodeProvider(), Options{CachePath: cachePath})
	assert.Equal(t, []string{"Cached", "NoCategory"}, c.Names())

	cat, _ := c.Category("NoCategory")
	assert.Equal(t, Other, cat)

	require.NoError(t, c.Refresh())
	assert.Equal(t, []string{"Blur", "Grade", "merge2"}, c.Names())

	// the cache now holds the rebuilt catalog
	reloaded := New(nil, Options{CachePath: cachePath})
	assert.Equal(t, []string{"Blur", "Grade", "merge2"}, reloaded.Names())
}

func TestBrokenCacheFallsBackToBuild(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "nodes.toml")
	require.NoError(t, os.WriteFile(cachePath, []byte("[[node\nname="), 0o644))

	c := New(nodeProvider(), Options{CachePath: cachePath})
	assert.Equal(t, 3, c.Len())
}

func TestWithPrefixAndInvalidate(t *testing.T) {
	c := New(nodeProvider(), Options{})
	assert.Equal(t, []string{"Blur"}, c.WithPrefix("Bl"))
	assert.Len(t, c.WithPrefix(""), 3)

	c.Invalidate()
	assert.Equal(t, 3, c.Len())
}

func TestEmptyEnvironment(t *testing.T) {
	c := New(nil, Options{CachePath: filepath.Join(t.TempDir(), "nodes.toml")})
	assert.Empty(t, c.Names())
	_, ok := c.Category("Blur")
	assert.False(t, ok)
	assert.NoError(t, c.Refresh())
}
