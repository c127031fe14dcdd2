package recommend

import (
	"sort"
	"sync"
)

// DefaultTaxonomyKey is the StaticTaxonomy entry used for categories it does not list.
const DefaultTaxonomyKey = "default"

// Taxonomy supplies the canonical weak/strong topic seeds of a category.
type Taxonomy interface {
	TopicSeed(category string) (weak, strong []string)
}

// TopicSeed is one category entry of a taxonomy.
type TopicSeed struct {
	Weak   []string `mapstructure:"weak" json:"weak"`
	Strong []string `mapstructure:"strong" json:"strong"`
}

// StaticTaxonomy is an in-memory category -> seed mapping. Replace swaps the whole
// mapping atomically, which is how config reloads reach running engines.
type StaticTaxonomy struct {
	mu    sync.RWMutex
	seeds map[string]TopicSeed
}

func NewStaticTaxonomy(seeds map[string]TopicSeed) *StaticTaxonomy {
	t := &StaticTaxonomy{}
	t.Replace(seeds)
	return t
}

func (t *StaticTaxonomy) Replace(seeds map[string]TopicSeed) {
	copied := make(map[string]TopicSeed, len(seeds))
	for k, v := range seeds {
		copied[k] = TopicSeed{
			Weak:   append([]string(nil), v.Weak...),
			Strong: append([]string(nil), v.Strong...),
		}
	}

	t.mu.Lock()
	t.seeds = copied
	t.mu.Unlock()
}

// Lookup returns the seed of a category without falling back to the default entry.
func (t *StaticTaxonomy) Lookup(category string) (TopicSeed, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seed, ok := t.seeds[category]
	return seed, ok
}

// Categories lists the configured categories in lexical order.
func (t *StaticTaxonomy) Categories() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.seeds))
	for k := range t.seeds {
		out = append(out, k)
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (t *StaticTaxonomy) TopicSeed(category string) (weak, strong []string) {
	seed, ok := t.Lookup(category)
	if !ok {
		seed, _ = t.Lookup(DefaultTaxonomyKey)
	}
	return append([]string(nil), seed.Weak...), append([]string(nil), seed.Strong...)
}

// SeedLookup is a taxonomy that can tell whether it knows a category.
type SeedLookup interface {
	Lookup(category string) (TopicSeed, bool)
}

// ChainTaxonomy asks each source in order and uses the first that knows the
// category; Fallback answers everything else.
type ChainTaxonomy struct {
	Sources  []SeedLookup
	Fallback Taxonomy
}

func (c ChainTaxonomy) TopicSeed(category string) (weak, strong []string) {
	for _, src := range c.Sources {
		if seed, ok := src.Lookup(category); ok {
			return append([]string(nil), seed.Weak...), append([]string(nil), seed.Strong...)
		}
	}
	if c.Fallback == nil {
		return nil, nil
	}
	return c.Fallback.TopicSeed(category)
}

// DefaultSeeds are the built-in seeds used when configuration supplies none.
func DefaultSeeds() map[string]TopicSeed {
	return map[string]TopicSeed{
		"PSPO1": {
			Weak:   []string{"Sprint Planning", "Product Backlog"},
			Strong: []string{"Scrum Events", "Scrum Team"},
		},
		"Verpleegkundig Rekenen": {
			Weak:   []string{"Dosering berekeningen", "IV druppelsnelheid"},
			Strong: []string{"Eenheid conversies", "Percentage oplossingen"},
		},
		DefaultTaxonomyKey: {
			Weak:   []string{"Complex reasoning", "Technical concepts"},
			Strong: []string{"Basic knowledge", "Factual recall"},
		},
	}
}
