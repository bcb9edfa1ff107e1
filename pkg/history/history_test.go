package history

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/dlbserve/pkg/dlb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_Record(t *testing.T) {
	h := New()
	assert.Equal(t, 1, h.Record("cat"))
	assert.Equal(t, 2, h.Record("cat"))
	assert.Equal(t, 1, h.Record("car"))
	assert.Equal(t, 2, h.Len())

	c, ok := h.Count("cat")
	assert.True(t, ok)
	assert.Equal(t, 2, c)
	_, ok = h.Count("ca")
	assert.False(t, ok, "prefixes are not entries")
}

func TestHistory_EntriesRanked(t *testing.T) {
	h := New()
	h.Set("zebra", 3)
	h.Set("apple", 3)
	h.Set("mango", 9)
	h.Set("kiwi", 1)

	assert.Equal(t, []dlb.Entry{
		{Word: "mango", Priority: 9},
		{Word: "apple", Priority: 3},
		{Word: "zebra", Priority: 3},
		{Word: "kiwi", Priority: 1},
	}, h.Entries())
}

func TestHistory_WriteAndRead(t *testing.T) {
	h := New()
	h.Set("hello", 4)
	h.Set("help", 2)

	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hello, 4\nhelp, 2\n", buf.String())

	trie := dlb.New()
	require.NoError(t, trie.Insert("hello", 0))
	got, err := Read(&buf, trie)
	require.NoError(t, err)
	assert.Equal(t, h.Entries(), got.Entries())

	p, err := trie.GetPriority("hello")
	require.NoError(t, err)
	assert.Equal(t, 4, p, "history overrides dictionary priority")
	assert.True(t, trie.Contains("help"))
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("ok, 1\nbroken, x\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	h, err := Read(strings.NewReader("bad\x00, 3\ngood, 2\n"), dlb.New())
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_history.txt")

	h, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())

	require.NoError(t, h.Save(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty history must not create a file")

	h.Record("dog")
	h.Record("dog")
	h.Record("cat")
	require.NoError(t, h.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dog, 2\ncat, 1\n", string(data))

	reloaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, h.Entries(), reloaded.Entries())
}

func TestRead_MalformedLeavesSinkUntouched(t *testing.T) {
	trie := dlb.New()
	require.NoError(t, trie.Insert("cart", 0))

	h, err := Read(strings.NewReader("cart, 3\ncow, 7\nbad, x\n"), trie)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Nil(t, h)

	p, err := trie.GetPriority("cart")
	require.NoError(t, err)
	assert.Equal(t, 0, p)
	assert.Equal(t, dlb.Absent, trie.Lookup("cow").Status)
}

func TestRead_RequiresCount(t *testing.T) {
	_, err := Read(strings.NewReader("# saved history\n\nhello, 2\nworld\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}
