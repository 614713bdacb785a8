package suggest

import (
	"regexp"
	"sort"
	"sync"
)

var (
	identifierPattern = regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z_0-9]*)\b`)
	functionPattern   = regexp.MustCompile(`\bdef\s+([a-zA-Z_][a-zA-Z_0-9]*)\b`)
	classPattern      = regexp.MustCompile(`\bclass\s+([a-zA-Z_][a-zA-Z_0-9]*)\b`)
)

// identifierCache memoizes the identifier scan on the exact document text.
type identifierCache struct {
	mu    sync.Mutex
	text  string
	valid bool
	names []string
}

func (ic *identifierCache) get(text string) []string {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.valid && ic.text == text {
		return ic.names
	}
	ic.text = text
	ic.names = ExtractIdentifiers(text)
	ic.valid = true
	return ic.names
}

// ExtractIdentifiers returns the sorted unique identifiers, function names
// and class names found in text.
func ExtractIdentifiers(text string) []string {
	if text == "" {
		return nil
	}
	set := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{identifierPattern, functionPattern, classPattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			set[m[1]] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
