package suggest

import (
	"sort"
	"strings"

	"github.com/bastiangx/scriptserve/pkg/fuzzy"
	"github.com/bastiangx/scriptserve/pkg/match"
)

// MaxItems caps the ranked list.
const MaxItems = 200

// RecencyBoost is added for names accepted recently.
const RecencyBoost = 5

// Rank scores every candidate against req.Prefix, adds the fuzzy fallback
// when the regular tiers found little, and sorts the result.
func (c *Completer) Rank(req Request, coll Collection) []Item {
	items := make([]Item, 0, len(coll.Candidates))
	present := make(map[string]bool, len(coll.Candidates))

	for _, text := range coll.Candidates {
		res, ok := match.Match(req.Prefix, text)
		if !ok || res.Score <= 0 {
			continue
		}
		items = append(items, c.item(req, coll, text, res.Score, res.Indices))
		present[text] = true
	}

	if fuzzy.ShouldTrigger(req.Fuzzy, req.Prefix, len(items)) {
		for _, text := range fuzzy.Fallback(req.Prefix, coll.Candidates, present) {
			items = append(items, c.item(req, coll, text, fuzzy.BaselineScore, nil))
		}
	}

	c.sortItems(items)
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	return items
}

func (c *Completer) item(req Request, coll Collection, text string, score int, indices []int) Item {
	kind, source := c.Classify(text, coll.FixedSource, req.Context)
	it := Item{
		Text:         text,
		Kind:         kind,
		Source:       source,
		MatchPrefix:  req.Prefix,
		MatchIndices: indices,
	}
	it.Score = score + coll.Priority[text] + source.Boost()
	if c.history != nil && c.history.IsRecent(text) {
		it.Score += RecencyBoost
	}
	it.Info = c.Info(it, req.Context)
	return it
}

func (c *Completer) sortItems(items []Item) {
	lower := make(map[string]string, len(items))
	usage := make(map[string]int, len(items))
	for _, it := range items {
		lower[it.Text] = strings.ToLower(it.Text)
		if c.history != nil {
			usage[it.Text] = c.history.Usage(it.Text)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if usage[a.Text] != usage[b.Text] {
			return usage[a.Text] > usage[b.Text]
		}
		if lower[a.Text] != lower[b.Text] {
			return lower[a.Text] < lower[b.Text]
		}
		return a.Text < b.Text
	})
}
