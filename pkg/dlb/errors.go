package dlb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a word is not stored in the trie.
	ErrNotFound = errors.New("dlb: word not found")
	// ErrPrefixOnly is returned when a word is only the prefix of stored words.
	// It matches ErrNotFound under errors.Is.
	ErrPrefixOnly = fmt.Errorf("%w: prefix only", ErrNotFound)
	// ErrInvalidSymbol is returned for input containing the Terminal symbol or invalid UTF-8.
	ErrInvalidSymbol = errors.New("dlb: word contains an invalid symbol")
)
