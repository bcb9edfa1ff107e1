package suggest

import (
	"errors"
	"fmt"

	"github.com/bastiangx/dlbserve/pkg/dictionary"
	"github.com/bastiangx/dlbserve/pkg/dlb"
	"github.com/bastiangx/dlbserve/pkg/fuzzy"
	"github.com/bastiangx/dlbserve/pkg/history"
	"github.com/charmbracelet/log"
)

// Suggestion is one ranked completion.
type Suggestion struct {
	Word            string
	Frequency       int
	WasCorrected    bool   `json:",omitempty"`
	OriginalPrefix  string `json:",omitempty"`
	CorrectedPrefix string `json:",omitempty"`
}

// Completer serves completions from a DLB trie. It is not safe for concurrent use.
type Completer struct {
	trie         *dlb.Trie
	history      *history.History
	fuzzyMatcher *fuzzy.Matcher
	fuzzyStale   bool
}

// NewCompleter returns a completer over an empty dictionary.
func NewCompleter() *Completer {
	return &Completer{
		trie:       dlb.New(),
		fuzzyStale: true,
	}
}

// SetHistory attaches the history that Accept records into.
func (c *Completer) SetHistory(h *history.History) {
	c.history = h
}

// History returns the attached history, or nil.
func (c *Completer) History() *history.History {
	return c.history
}

// AddWord inserts word with priority, overwriting any previous priority.
func (c *Completer) AddWord(word string, priority int) error {
	if err := c.trie.Insert(word, priority); err != nil {
		return err
	}
	c.fuzzyStale = true
	return nil
}

// Insert lets the completer act as a dictionary.Sink.
func (c *Completer) Insert(word string, priority int) error {
	return c.AddWord(word, priority)
}

// LoadDictionary loads a word list or chunk directory from path.
func (c *Completer) LoadDictionary(path string, maxWords int) (dictionary.Stats, error) {
	stats, err := dictionary.Load(path, c, maxWords)
	if err != nil {
		return stats, fmt.Errorf("failed to load dictionary: %w", err)
	}
	log.Debugf("Dictionary ready: %d words, %d nodes", c.trie.Size(), c.trie.Nodes())
	return stats, nil
}

// LoadHistory loads the history file at path, applies its priorities to the dictionary
// and attaches it.
func (c *Completer) LoadHistory(path string) error {
	h, err := history.Load(path, c)
	if err != nil {
		return err
	}
	c.history = h
	return nil
}

// Lookup reports whether word is known.
func (c *Completer) Lookup(word string) dlb.Result {
	return c.trie.Lookup(word)
}

// Entries returns the whole dictionary ranked by priority.
func (c *Completer) Entries() []dlb.Entry {
	return c.trie.All()
}

// Complete returns the top limit words starting with prefix. limit <= 0 returns all.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	entries := c.trie.WithPrefix(prefix)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	suggestions := make([]Suggestion, len(entries))
	for i, e := range entries {
		suggestions[i] = Suggestion{Word: e.Word, Frequency: e.Priority}
	}
	return suggestions
}

// CompleteWithFuzzy completes prefix, and when nothing matches, retries with the
// closest dictionary word as the prefix.
func (c *Completer) CompleteWithFuzzy(prefix string, limit int) []Suggestion {
	suggestions := c.Complete(prefix, limit)
	if len(suggestions) > 0 {
		return suggestions
	}

	corrected, wasFixed := c.matcher().SuggestCorrection(prefix)
	if !wasFixed || corrected == prefix {
		return suggestions
	}
	log.Debugf("Prefix '%s' was corrected to '%s'", prefix, corrected)

	suggestions = c.Complete(corrected, limit)
	for i := range suggestions {
		suggestions[i].WasCorrected = true
		suggestions[i].OriginalPrefix = prefix
		suggestions[i].CorrectedPrefix = corrected
	}
	return suggestions
}

// matcher rebuilds the fuzzy matcher when words were added since the last build.
func (c *Completer) matcher() *fuzzy.Matcher {
	if c.fuzzyMatcher == nil || c.fuzzyStale {
		c.fuzzyMatcher = fuzzy.NewMatcher(c.trie.All())
		c.fuzzyStale = false
		log.Debugf("Fuzzy matcher rebuilt with %d words", c.fuzzyMatcher.Len())
	}
	return c.fuzzyMatcher
}

// Accept records a completed word: a known word gains one priority, an unknown one is
// added with priority 1. The history, if attached, counts it too.
func (c *Completer) Accept(word string) (int, error) {
	priority, err := c.trie.UpdatePriority(word)
	if errors.Is(err, dlb.ErrNotFound) {
		priority = 1
		err = c.trie.Insert(word, priority)
		c.fuzzyStale = true
	}
	if err != nil {
		return 0, err
	}
	if c.history != nil {
		c.history.Record(word)
	}
	return priority, nil
}

// Stats returns statistics about the loaded dictionary, computed with one full traversal.
func (c *Completer) Stats() map[string]int {
	words, maxFrequency := 0, 0
	_ = c.trie.Visit("", func(_ string, priority int) error {
		if words == 0 || priority > maxFrequency {
			maxFrequency = priority
		}
		words++
		return nil
	})
	stats := map[string]int{
		"totalWords":   words,
		"nodes":        c.trie.Nodes(),
		"maxFrequency": maxFrequency,
	}
	if c.history != nil {
		stats["historyWords"] = c.history.Len()
	}
	return stats
}
