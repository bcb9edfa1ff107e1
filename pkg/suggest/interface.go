// Package suggest is the core, providing ranked prefix completions over a DLB trie and learning from accepted words.
package suggest

import "github.com/bastiangx/dlbserve/pkg/dlb"

// ICompleter defines the interface for word completion engines
type ICompleter interface {
	// Complete returns up to limit suggestions for prefix, best first
	Complete(prefix string, limit int) []Suggestion

	// CompleteWithFuzzy corrects a misspelled prefix before completing when it has no matches
	CompleteWithFuzzy(prefix string, limit int) []Suggestion

	// Accept records that the user completed word and returns its new priority
	Accept(word string) (int, error)

	// AddWord adds a word with its priority to the completer
	AddWord(word string, priority int) error

	// Lookup reports whether word is known
	Lookup(word string) dlb.Result

	// Stats returns statistics about the loaded dictionary
	Stats() map[string]int
}
