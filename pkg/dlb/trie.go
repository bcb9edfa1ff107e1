/*
Package dlb implements a De la Briandais trie: a prefix tree whose children are kept as a
singly linked sibling chain instead of a fixed-width array.

Each word carries a mutable integer priority. Prefix queries return every completed word
under the prefix, ranked by descending priority:

	t := dlb.New()
	_ = t.Insert("cat", 5)
	_ = t.Insert("car", 1)
	t.WithPrefix("ca") // [{cat 5} {car 1}]

A Trie is not safe for concurrent use. Callers sharing one across goroutines must guard
every call, reads included, with a single lock.
*/
package dlb

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Terminal is the symbol stored in the node that ends a word.
// It never appears in a valid word.
const Terminal rune = 0

const none int32 = -1

type node struct {
	symbol   rune
	sibling  int32
	child    int32
	priority int
}

// Trie is a DLB trie. Nodes live in an arena owned by the Trie and are addressed by index.
type Trie struct {
	nodes []node
	root  int32
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: none}
}

// NewFromWords builds a trie holding words, each with priority 0.
func NewFromWords(words ...string) (*Trie, error) {
	t := New()
	for _, w := range words {
		if err := t.Insert(w, 0); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Trie) alloc(symbol rune) int32 {
	t.nodes = append(t.nodes, node{symbol: symbol, sibling: none, child: none})
	return int32(len(t.nodes) - 1)
}

// symbols splits word into runes. Invalid UTF-8 is rejected, since every bad byte would
// decode to the same replacement rune.
func symbols(word string) ([]rune, error) {
	if !utf8.ValidString(word) || strings.ContainsRune(word, Terminal) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, word)
	}
	return []rune(word), nil
}

// symbolAt returns the symbol due at position d, Terminal past the end.
func symbolAt(word []rune, d int) rune {
	if d == len(word) {
		return Terminal
	}
	return word[d]
}

// Insert stores word with the given priority. An existing priority is overwritten.
func (t *Trie) Insert(word string, priority int) error {
	syms, err := symbols(word)
	if err != nil {
		return err
	}
	t.root = t.insert(t.root, syms, 0, priority)
	return nil
}

// insert returns the (possibly new) head of the chain it was given.
// t.nodes may grow during the recursion, so edges are written back through indexes only.
func (t *Trie) insert(head int32, word []rune, d int, priority int) int32 {
	c := symbolAt(word, d)
	if head == none {
		head = t.alloc(c)
	}
	if d == len(word) {
		if t.nodes[head].symbol != Terminal {
			end := t.alloc(Terminal)
			t.nodes[end].sibling = head
			head = end
		}
		t.nodes[head].priority = priority
		return head
	}
	if c != t.nodes[head].symbol {
		next := t.insert(t.nodes[head].sibling, word, d, priority)
		t.nodes[head].sibling = next
	} else {
		next := t.insert(t.nodes[head].child, word, d+1, priority)
		t.nodes[head].child = next
	}
	return head
}

// search returns the head of the chain reached after consuming word from position d,
// or none if the trie runs out first.
func (t *Trie) search(head int32, word []rune, d int) int32 {
	for head != none {
		if d == len(word) {
			return head
		}
		n := &t.nodes[head]
		if word[d] != n.symbol {
			head = n.sibling
			continue
		}
		head = n.child
		d++
	}
	return none
}

// Status is the outcome of a Lookup.
type Status int

const (
	// Absent means no path for the word exists.
	Absent Status = iota
	// PrefixOnly means the word is the prefix of a stored word but not a word itself.
	PrefixOnly
	// WordFound means the word is stored.
	WordFound
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case PrefixOnly:
		return "prefix"
	case WordFound:
		return "found"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is a read-only view of a lookup. Priority is set only when Status is WordFound.
type Result struct {
	Status   Status
	Priority int
}

// Lookup reports whether word is stored, only a prefix, or absent.
// Words containing Terminal or invalid UTF-8 are always Absent.
func (t *Trie) Lookup(word string) Result {
	syms, err := symbols(word)
	if err != nil {
		return Result{Status: Absent}
	}
	return t.lookup(syms)
}

func (t *Trie) lookup(word []rune) Result {
	head := t.search(t.root, word, 0)
	switch {
	case head == none:
		return Result{Status: Absent}
	case t.nodes[head].symbol != Terminal:
		return Result{Status: PrefixOnly}
	default:
		return Result{Status: WordFound, Priority: t.nodes[head].priority}
	}
}

// Contains reports whether word is stored.
func (t *Trie) Contains(word string) bool {
	return t.Lookup(word).Status == WordFound
}

// terminal resolves word to its terminal node or the error describing why it has none.
func (t *Trie) terminal(word string) (int32, error) {
	syms, err := symbols(word)
	if err != nil {
		return none, err
	}
	head := t.search(t.root, syms, 0)
	switch {
	case head == none:
		return none, fmt.Errorf("%w: %q", ErrNotFound, word)
	case t.nodes[head].symbol != Terminal:
		return none, fmt.Errorf("%w: %q", ErrPrefixOnly, word)
	}
	return head, nil
}

// GetPriority returns the priority of word.
func (t *Trie) GetPriority(word string) (int, error) {
	end, err := t.terminal(word)
	if err != nil {
		return 0, err
	}
	return t.nodes[end].priority, nil
}

// UpdatePriority increments the priority of word by one and returns the new value.
// Nothing changes when word is not stored.
func (t *Trie) UpdatePriority(word string) (int, error) {
	end, err := t.terminal(word)
	if err != nil {
		return 0, err
	}
	t.nodes[end].priority++
	return t.nodes[end].priority, nil
}

// VisitFunc is called once per completed word. Returning an error stops the walk.
type VisitFunc func(word string, priority int) error

// Visit walks every word starting with prefix in traversal order: the chain head's
// terminal first, then each sibling's subtree in chain order.
// The first error returned by fn is returned by Visit.
func (t *Trie) Visit(prefix string, fn VisitFunc) error {
	syms, err := symbols(prefix)
	if err != nil {
		return err
	}
	head := t.search(t.root, syms, 0)
	return t.collect(head, syms, fn)
}

func (t *Trie) collect(head int32, prefix []rune, fn VisitFunc) error {
	if head == none {
		return nil
	}
	if t.nodes[head].symbol == Terminal {
		if err := fn(string(prefix), t.nodes[head].priority); err != nil {
			return err
		}
	}
	for n := head; n != none; n = t.nodes[n].sibling {
		sym := t.nodes[n].symbol
		if sym == Terminal {
			continue
		}
		if err := t.collect(t.nodes[n].child, append(prefix, sym), fn); err != nil {
			return err
		}
	}
	return nil
}

// WithPrefix returns every word starting with prefix, ranked by descending priority.
// Words of equal priority keep traversal order.
func (t *Trie) WithPrefix(prefix string) []Entry {
	entries := []Entry{}
	// collect only fails through its callback, which never does here
	_ = t.Visit(prefix, func(word string, priority int) error {
		entries = append(entries, Entry{Word: word, Priority: priority})
		return nil
	})
	SortEntries(entries)
	return entries
}

// All returns every word in the trie ranked by descending priority.
func (t *Trie) All() []Entry {
	return t.WithPrefix("")
}

// Size counts the stored words with a full traversal.
func (t *Trie) Size() int {
	n := 0
	_ = t.Visit("", func(string, int) error {
		n++
		return nil
	})
	return n
}

// Nodes returns the number of allocated nodes, terminals included.
func (t *Trie) Nodes() int {
	return len(t.nodes)
}
