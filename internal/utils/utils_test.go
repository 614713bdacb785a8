package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `toml:"name"`
	Count int      `toml:"count"`
	Dirs  []string `toml:"dirs"`
}

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	in := sample{Name: "blur", Count: 3, Dirs: []string{"/a", "/b"}}
	require.NoError(t, SaveTOMLFile(in, path))
	assert.True(t, FileExists(path))

	var out sample
	require.NoError(t, LoadTOMLFile(path, &out))
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not linger")
}

func TestSaveTOMLMissingDir(t *testing.T) {
	err := SaveTOMLFile(sample{}, filepath.Join(t.TempDir(), "missing", "x.toml"))
	assert.Error(t, err)
}

func TestExtractHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[completion]
fuzzy_enabled = false
debounce_ms = 80
name = "x"
dirs = ["/a", 3, "/b"]
`), 0o644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	section, ok := ExtractSection(data, "completion")
	require.True(t, ok)

	testCases := []struct {
		description string
		check       func(t *testing.T)
	}{
		{"bool", func(t *testing.T) {
			v, ok := ExtractBool(section, "fuzzy_enabled")
			assert.True(t, ok)
			assert.False(t, v)
		}},
		{"int", func(t *testing.T) {
			v, ok := ExtractInt64(section, "debounce_ms")
			assert.True(t, ok)
			assert.Equal(t, 80, v)
		}},
		{"string", func(t *testing.T) {
			v, ok := ExtractString(section, "name")
			assert.True(t, ok)
			assert.Equal(t, "x", v)
		}},
		{"string slice skips other values", func(t *testing.T) {
			v, ok := ExtractStringSlice(section, "dirs")
			assert.True(t, ok)
			assert.Equal(t, []string{"/a", "/b"}, v)
		}},
		{"wrong type", func(t *testing.T) {
			_, ok := ExtractBool(section, "name")
			assert.False(t, ok)
		}},
		{"missing section", func(t *testing.T) {
			_, ok := ExtractSection(data, "server")
			assert.False(t, ok)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, tc.check)
	}
}

func TestDataFileCandidates(t *testing.T) {
	pr := &PathResolver{executableDir: "/opt/app/bin", configDir: "/home/me/.config/app"}

	got := pr.DataFileCandidates("/abs/symbols.toml", "symbols.toml")
	assert.Equal(t, []string{
		"/abs/symbols.toml",
		"/opt/app/bin/data/symbols.toml",
		"/opt/app/data/symbols.toml",
		"/home/me/.config/app/symbols.toml",
	}, got)

	assert.Len(t, pr.DataFileCandidates("", "symbols.toml"), 3)
}

func TestFindDataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	pr := &PathResolver{executableDir: filepath.Join(dir, "bin"), configDir: dir}
	found, err := pr.FindDataFile("", "symbols.toml")
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = pr.FindDataFile("", "nope.toml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetRuntimeInfo(t *testing.T) {
	pr := &PathResolver{
		executablePath: "/opt/app/bin/scriptserve",
		executableDir:  "/opt/app/bin",
		homeDir:        "/home/me",
		configDir:      "/home/me/.config/scriptserve",
	}
	info := pr.GetRuntimeInfo()

	testCases := []struct {
		description string
		key         string
		want        string
	}{
		{"executable path", "executable_path", "/opt/app/bin/scriptserve"},
		{"executable dir", "executable_dir", "/opt/app/bin"},
		{"home dir", "home_dir", "/home/me"},
		{"config dir", "config_dir", "/home/me/.config/scriptserve"},
		{"os", "os", runtime.GOOS},
		{"arch", "arch", runtime.GOARCH},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.want, info[tc.key])
		})
	}
	assert.Contains(t, info, "current_dir")
}
