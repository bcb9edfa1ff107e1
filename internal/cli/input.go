// Package cli is the interactive character-at-a-time completion prompt used for DBG and testing
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/bastiangx/dlbserve/internal/logger"
	"github.com/bastiangx/dlbserve/internal/utils"
	"github.com/bastiangx/dlbserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

const (
	quitKey   = '!'
	acceptKey = '$'
)

// InputHandler reads one character at a time and prints predictions for the word typed so far.
//
//	!      quit and print the average prediction time
//	$      accept the current input as a word
//	1..n   accept the n-th prediction
//
// Any other non-space character extends the current word.
type InputHandler struct {
	completer   suggest.ICompleter
	limit       int
	in          *bufio.Reader
	out         *log.Logger
	current     []rune
	predictions []suggest.Suggestion
	timings     []time.Duration
}

// NewInputHandler creates a handler on stdin/stdout printing up to limit predictions
func NewInputHandler(completer suggest.ICompleter, limit int) *InputHandler {
	return NewInputHandlerWithIO(completer, limit, os.Stdin, os.Stdout)
}

// NewInputHandlerWithIO creates a handler over the given streams
func NewInputHandlerWithIO(completer suggest.ICompleter, limit int, r io.Reader, w io.Writer) *InputHandler {
	if limit < 1 {
		limit = 5
	}
	return &InputHandler{
		completer: completer,
		limit:     limit,
		in:        bufio.NewReader(r),
		out:       logger.NewWithWriter(w, ""),
	}
}

// Start runs the loop until '!' or the end of input.
func (h *InputHandler) Start() error {
	h.out.Print("dlbserve CLI [BETA]")
	h.out.Print("Enter your first character:")

	for {
		r, _, err := h.in.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if unicode.IsSpace(r) {
			continue
		}
		if r == quitKey {
			break
		}
		h.handleRune(r)
	}

	h.out.Printf("Average time: %v", h.AverageTime())
	h.out.Print("Bye!")
	return nil
}

func (h *InputHandler) handleRune(r rune) {
	switch {
	case r == acceptKey:
		if len(h.current) == 0 {
			log.Debug("Nothing typed, ignoring accept")
			return
		}
		h.complete(string(h.current))
	case r >= '1' && r <= '9' && int(r-'0') <= len(h.predictions):
		h.complete(h.predictions[r-'1'].Word)
	default:
		h.current = append(h.current, r)
		h.predict()
	}
}

func (h *InputHandler) complete(word string) {
	priority, err := h.completer.Accept(word)
	if err != nil {
		log.Errorf("Could not complete %q: %v", word, err)
	} else {
		h.out.Printf("WORD COMPLETED: %s (priority %s)", word, utils.FormatWithCommas(priority))
	}
	h.current = h.current[:0]
	h.predictions = nil
	h.out.Print("Enter first character of next word:")
}

func (h *InputHandler) predict() {
	prefix := string(h.current)
	start := time.Now()
	h.predictions = h.completer.Complete(prefix, h.limit)
	elapsed := time.Since(start)
	h.timings = append(h.timings, elapsed)
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	h.out.Printf("(%v) Predictions for '%s':", elapsed, prefix)
	if len(h.predictions) == 0 {
		h.out.Print("No predictions found! Type '$' when you finish typing your word.")
	} else {
		var b strings.Builder
		for i, s := range h.predictions {
			fmt.Fprintf(&b, "(%d) %s    ", i+1, s.Word)
		}
		h.out.Print(strings.TrimSpace(b.String()))
	}
	h.out.Print("Enter the next character:")
}

// Current returns the word typed so far.
func (h *InputHandler) Current() string {
	return string(h.current)
}

// AverageTime is the mean prediction time, zero before the first prediction.
func (h *InputHandler) AverageTime() time.Duration {
	if len(h.timings) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range h.timings {
		total += d
	}
	return total / time.Duration(len(h.timings))
}
