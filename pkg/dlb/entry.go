package dlb

import "slices"

// Entry pairs a word with its priority.
type Entry struct {
	Word     string
	Priority int
}

// Compare orders entries by descending priority. It returns a negative number when e
// ranks before other, a positive one when after, and 0 when the priorities tie.
func (e Entry) Compare(other Entry) int {
	switch {
	case e.Priority > other.Priority:
		return -1
	case e.Priority < other.Priority:
		return 1
	default:
		return 0
	}
}

// Less reports whether e ranks strictly before other.
func (e Entry) Less(other Entry) bool {
	return e.Compare(other) < 0
}

// SortEntries ranks entries by descending priority in place, keeping the relative
// order of ties.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, Entry.Compare)
}
