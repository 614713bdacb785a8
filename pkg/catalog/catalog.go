// Package catalog is the lazily built list of constructible entity names
// (node types) with a coarse category for each.
//
// The catalog is loaded from a TOML cache file when one exists. Otherwise it
// is built from the provider's constructor namespace plus a scan of the
// plugin directories, and written back to the cache on a best-effort basis.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/scriptserve/internal/utils"
	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DefaultNamespace is the constructor namespace of the host.
const DefaultNamespace = "nuke.nodes"

// Other is the category of names no keyword matched.
const Other = "Other"

var pluginExtensions = []string{".gizmo", ".dll", ".dylib", ".so"}

var excludedNames = map[string]bool{"A_RestoreEdgePremult": true}

var excludedPrefixes = []string{"NST_"}

var categories = []struct {
	name     string
	keywords []string
}{
	{"Transform", []string{"transform", "move", "position", "crop"}},
	{"Color", []string{"color", "grade", "exposure", "saturation"}},
	{"Merge", []string{"merge", "combine", "blend"}},
	{"Filter", []string{"blur", "sharpen", "denoise", "filter"}},
	{"Channel", []string{"channel", "shuffle", "copy"}},
	{"Keyer", []string{"keyer", "key", "chroma"}},
	{"Draw", []string{"draw", "paint", "roto"}},
	{"Time", []string{"time", "frame", "retiming"}},
}

// Categorize picks the first category with a keyword contained in name.
func Categorize(name string) string {
	lowered := strings.ToLower(name)
	for _, c := range categories {
		for _, k := range c.keywords {
			if strings.Contains(lowered, k) {
				return c.name
			}
		}
	}
	return Other
}

// Entry is one cached node type.
type Entry struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

type cacheFile struct {
	Nodes []Entry `toml:"node"`
}

// Options configure where the catalog comes from.
type Options struct {
	CachePath  string
	PluginDirs []string
	Namespace  string
}

// Catalog is safe for concurrent use. It is built at most once until
// Invalidate or Refresh.
type Catalog struct {
	provider symbols.Provider
	opts     Options

	mu     sync.RWMutex
	loaded bool
	trie   *patricia.Trie
	names  []string
}

func New(p symbols.Provider, opts Options) *Catalog {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	return &Catalog{provider: symbols.NewGuard(p), opts: opts}
}

// Names returns every entity name, sorted case-insensitively.
func (c *Catalog) Names() []string {
	c.ensure(false)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Category returns the category recorded for name.
func (c *Catalog) Category(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	c.ensure(false)
	c.mu.RLock()
	defer c.mu.RUnlock()
	item := c.trie.Get(patricia.Prefix(name))
	if item == nil {
		return "", false
	}
	cat, ok := item.(string)
	return cat, ok
}

// WithPrefix lists names starting with prefix, case-sensitively.
func (c *Catalog) WithPrefix(prefix string) []string {
	if prefix == "" {
		return c.Names()
	}
	c.ensure(false)
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	err := c.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		out = append(out, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error walking catalog: %v", err)
	}
	sortNames(out)
	return out
}

// Len reports the number of entities.
func (c *Catalog) Len() int {
	c.ensure(false)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Invalidate forgets the loaded catalog; the next read loads it again.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.trie = nil
	c.names = nil
}

// Refresh rebuilds the catalog from the environment, ignoring the cache,
// and rewrites the cache file. The in-memory catalog is replaced even when
// persisting fails.
func (c *Catalog) Refresh() error {
	return c.ensure(true)
}

func (c *Catalog) ensure(rebuild bool) error {
	if !rebuild {
		c.mu.RLock()
		loaded := c.loaded
		c.mu.RUnlock()
		if loaded {
			return nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded && !rebuild {
		return nil
	}

	var entries map[string]string
	if !rebuild {
		entries = c.loadCache()
	}
	var saveErr error
	if len(entries) == 0 {
		entries = c.build()
		if len(entries) > 0 {
			saveErr = c.saveCache(entries)
			if saveErr != nil {
				log.Warnf("Could not write catalog cache: %v", saveErr)
			}
		}
	}

	trie := patricia.NewTrie()
	names := make([]string, 0, len(entries))
	for name, cat := range entries {
		trie.Insert(patricia.Prefix(name), cat)
		names = append(names, name)
	}
	sortNames(names)

	c.trie = trie
	c.names = names
	c.loaded = true
	log.Debugf("Catalog ready with %d entities", len(names))
	return saveErr
}

func (c *Catalog) loadCache() map[string]string {
	path := c.opts.CachePath
	if path == "" || !utils.FileExists(path) {
		return nil
	}
	var file cacheFile
	if err := utils.LoadTOMLFile(path, &file); err != nil {
		log.Warnf("Ignoring catalog cache %s: %v", path, err)
		return nil
	}
	out := make(map[string]string, len(file.Nodes))
	for _, e := range file.Nodes {
		if e.Name == "" {
			continue
		}
		cat := e.Category
		if cat == "" {
			cat = Other
		}
		out[e.Name] = cat
	}
	log.Debugf("Loaded %d entities from %s", len(out), path)
	return out
}

func (c *Catalog) saveCache(entries map[string]string) error {
	path := c.opts.CachePath
	if path == "" {
		return nil
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sortNames(names)

	file := cacheFile{Nodes: make([]Entry, 0, len(names))}
	for _, name := range names {
		file.Nodes = append(file.Nodes, Entry{Name: name, Category: entries[name]})
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "creating catalog dir for %s", path)
	}
	if err := utils.SaveTOMLFile(file, path); err != nil {
		return errors.Wrapf(err, "writing catalog cache %s", path)
	}
	return nil
}

// build collects callable public members of the constructor namespace,
// then plugin files. The first source to name an entity decides its category.
func (c *Catalog) build() map[string]string {
	out := make(map[string]string)

	if h, ok := c.provider.Resolve(c.opts.Namespace); ok {
		for _, m := range c.provider.Members(h) {
			if m.Name == "" || strings.HasPrefix(m.Name, "_") || !m.Kind.Callable() {
				continue
			}
			if _, seen := out[m.Name]; !seen {
				out[m.Name] = Categorize(m.Name)
			}
		}
	}

	for _, dir := range c.opts.PluginDirs {
		for _, name := range scanPluginDir(dir) {
			if _, seen := out[name]; !seen {
				out[name] = Categorize(name)
			}
		}
	}
	return out
}

func scanPluginDir(dir string) []string {
	if dir == "" {
		return nil
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		log.Debugf("Skipping plugin dir %s: %v", dir, err)
		return nil
	}
	var out []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := filepath.Ext(f.Name())
		if !hasPluginExtension(ext) {
			continue
		}
		name := strings.TrimSuffix(f.Name(), ext)
		if name == "" || excludedNames[name] || hasExcludedPrefix(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func hasPluginExtension(ext string) bool {
	for _, e := range pluginExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func hasExcludedPrefix(name string) bool {
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}
