// Package history keeps the words a user completed and how often, and persists them as
// "word, count" lines.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/dlbserve/internal/utils"
	"github.com/bastiangx/dlbserve/pkg/dictionary"
	"github.com/bastiangx/dlbserve/pkg/dlb"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// History maps completed words to their counts. It is safe for concurrent use.
type History struct {
	mu   sync.RWMutex
	trie *patricia.Trie
	size int
}

// New returns an empty history.
func New() *History {
	return &History{trie: patricia.NewTrie()}
}

// Record counts one more completion of word and returns the new count.
func (h *History) Record(word string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 1
	if item := h.trie.Get(patricia.Prefix(word)); item != nil {
		count = item.(int) + 1
	} else {
		h.size++
	}
	h.trie.Set(patricia.Prefix(word), count)
	return count
}

// Set overwrites the count of word.
func (h *History) Set(word string, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.trie.Get(patricia.Prefix(word)) == nil {
		h.size++
	}
	h.trie.Set(patricia.Prefix(word), count)
}

// Count returns the count of word.
func (h *History) Count(word string) (int, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	item := h.trie.Get(patricia.Prefix(word))
	if item == nil {
		return 0, false
	}
	return item.(int), true
}

// Len returns the number of distinct words.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Entries returns the history ranked by descending count, ties in lexical order.
func (h *History) Entries() []dlb.Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entries := make([]dlb.Entry, 0, h.size)
	_ = h.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		entries = append(entries, dlb.Entry{Word: string(p), Priority: item.(int)})
		return nil
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Word < entries[j].Word
	})
	dlb.SortEntries(entries)
	return entries
}

// WriteTo writes the ranked history as "word, count" lines.
func (h *History) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range h.Entries() {
		n, err := fmt.Fprintf(w, "%s, %d\n", e.Word, e.Priority)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Read parses "word, count" lines from r. The whole input is parsed before anything
// is inserted into sink, when not nil, so a malformed file leaves the sink untouched.
func Read(r io.Reader, sink dictionary.Sink) (*History, error) {
	var entries []dlb.Entry
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, count, err := dictionary.ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("history line %d: %w", lineNo, err)
		}
		entries = append(entries, dlb.Entry{Word: word, Priority: count})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	h := New()
	for _, e := range entries {
		if sink != nil {
			if err := sink.Insert(e.Word, e.Priority); err != nil {
				if errors.Is(err, dlb.ErrInvalidSymbol) {
					log.Warnf("Skipping history word %q: %v", e.Word, err)
					continue
				}
				return nil, fmt.Errorf("history word %q: %w", e.Word, err)
			}
		}
		h.Set(e.Word, e.Priority)
	}
	return h, nil
}

// Load reads the history file at path. A missing file yields an empty history.
func Load(path string, sink dictionary.Sink) (*History, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debugf("No history at %s, starting fresh", path)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}
	defer file.Close()

	h, err := Read(file, sink)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Loaded %d history words from %s", h.Len(), path)
	return h, nil
}

// Save writes the history to path. Nothing is written when the history is empty.
func (h *History) Save(path string) error {
	if h.Len() == 0 {
		log.Debug("History empty, not saving")
		return nil
	}
	err := utils.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := h.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save history %s: %w", path, err)
	}
	log.Debugf("Saved %d history words to %s", h.Len(), path)
	return nil
}
