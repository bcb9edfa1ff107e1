package suggest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/dlbserve/pkg/dlb"
	"github.com/bastiangx/dlbserve/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompleter(t *testing.T, words map[string]int) *Completer {
	t.Helper()
	c := NewCompleter()
	for w, p := range words {
		require.NoError(t, c.AddWord(w, p))
	}
	return c
}

func suggestionWords(s []Suggestion) []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].Word
	}
	return out
}

func TestCompleter_CompleteRankedAndLimited(t *testing.T) {
	c := newTestCompleter(t, map[string]int{
		"the": 50, "then": 20, "there": 30, "they": 40, "theory": 10, "dog": 99,
	})

	got := c.Complete("the", 3)
	assert.Equal(t, []string{"the", "they", "there"}, suggestionWords(got))
	assert.Equal(t, 50, got[0].Frequency)

	assert.Len(t, c.Complete("the", 0), 5)
	assert.Len(t, c.Complete("the", 100), 5)
	assert.Empty(t, c.Complete("xyz", 5))
}

func TestCompleter_Accept(t *testing.T) {
	c := newTestCompleter(t, map[string]int{"cat": 0, "car": 0})
	c.SetHistory(history.New())

	p, err := c.Accept("car")
	require.NoError(t, err)
	assert.Equal(t, 1, p)
	assert.Equal(t, []string{"car", "cat"}, suggestionWords(c.Complete("ca", 5)))

	p, err = c.Accept("cab")
	require.NoError(t, err)
	assert.Equal(t, 1, p, "unknown words start at priority 1")
	assert.Equal(t, dlb.Result{Status: dlb.WordFound, Priority: 1}, c.Lookup("cab"))

	p, err = c.Accept("car")
	require.NoError(t, err)
	assert.Equal(t, 2, p)

	count, ok := c.History().Count("car")
	require.True(t, ok)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, c.Stats()["historyWords"])
}

func TestCompleter_AcceptPrefixOnlyInsertsWord(t *testing.T) {
	c := newTestCompleter(t, map[string]int{"cart": 5})

	p, err := c.Accept("car")
	require.NoError(t, err)
	assert.Equal(t, 1, p)
	assert.Equal(t, []string{"cart", "car"}, suggestionWords(c.Complete("car", 0)))
}

func TestCompleter_AcceptInvalid(t *testing.T) {
	c := NewCompleter()
	_, err := c.Accept("bad\x00")
	assert.ErrorIs(t, err, dlb.ErrInvalidSymbol)
	assert.ErrorIs(t, c.AddWord("\x00", 1), dlb.ErrInvalidSymbol)
}

func TestCompleter_CompleteWithFuzzy(t *testing.T) {
	c := newTestCompleter(t, map[string]int{"apple": 10, "applesauce": 3, "banana": 5})

	got := c.CompleteWithFuzzy("appel", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, []string{"apple", "applesauce"}, suggestionWords(got))
	assert.True(t, got[0].WasCorrected)
	assert.Equal(t, "appel", got[0].OriginalPrefix)
	assert.Equal(t, "apple", got[0].CorrectedPrefix)

	direct := c.CompleteWithFuzzy("ban", 5)
	assert.Equal(t, []string{"banana"}, suggestionWords(direct))
	assert.False(t, direct[0].WasCorrected)

	cased := c.CompleteWithFuzzy("Apple", 5)
	assert.Equal(t, []string{"apple", "applesauce"}, suggestionWords(cased))
	assert.Equal(t, "apple", cased[0].CorrectedPrefix)

	assert.Empty(t, c.CompleteWithFuzzy("zzzzz", 5))

	// words added later are visible to the rebuilt matcher
	require.NoError(t, c.AddWord("zebra", 1))
	assert.Equal(t, []string{"zebra"}, suggestionWords(c.CompleteWithFuzzy("zebar", 5)))
}

func TestCompleter_LoadDictionaryAndHistory(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "dictionary.txt")
	hist := filepath.Join(dir, "user_history.txt")
	require.NoError(t, os.WriteFile(dict, []byte("cat\ncar\ncart\ndog\n"), 0644))
	require.NoError(t, os.WriteFile(hist, []byte("cart, 3\ncow, 1\n"), 0644))

	c := NewCompleter()
	stats, err := c.LoadDictionary(dict, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Loaded)
	require.NoError(t, c.LoadHistory(hist))

	assert.Equal(t, "cart", c.Complete("ca", 1)[0].Word)
	assert.Equal(t, dlb.WordFound, c.Lookup("cow").Status)
	assert.Equal(t, 5, c.Stats()["totalWords"])
	assert.Equal(t, 3, c.Stats()["maxFrequency"])
	assert.Len(t, c.Entries(), 5)

	_, err = c.LoadDictionary(filepath.Join(dir, "missing.txt"), 0)
	assert.Error(t, err)
}

func TestCompleter_StatsFollowLoweredPriority(t *testing.T) {
	c := newTestCompleter(t, map[string]int{"cat": 9, "dog": 4})
	assert.Equal(t, 9, c.Stats()["maxFrequency"])

	require.NoError(t, c.AddWord("cat", 2))
	stats := c.Stats()
	assert.Equal(t, 4, stats["maxFrequency"])
	assert.Equal(t, 2, stats["totalWords"])
	assert.Zero(t, NewCompleter().Stats()["maxFrequency"])
}

func TestCompleter_LoadHistoryMalformed(t *testing.T) {
	hist := filepath.Join(t.TempDir(), "user_history.txt")
	require.NoError(t, os.WriteFile(hist, []byte("cart, 3\ncow, 7\nbad, x\n"), 0644))

	c := newTestCompleter(t, map[string]int{"cart": 0})
	err := c.LoadHistory(hist)
	require.Error(t, err)

	assert.Nil(t, c.History())
	assert.Equal(t, dlb.Result{Status: dlb.WordFound, Priority: 0}, c.Lookup("cart"))
	assert.Equal(t, dlb.Absent, c.Lookup("cow").Status)
}

var _ ICompleter = (*Completer)(nil)
