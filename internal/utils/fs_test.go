package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	boom := errors.New("boom")
	err = WriteFileAtomic(path, func(w io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data), "failed write must leave the old file")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestSaveTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	in := map[string]any{"dict": map[string]any{"max_words": 12}}
	require.NoError(t, SaveTOMLFile(in, path))

	parsed, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	section, ok := ExtractSection(parsed, "dict")
	require.True(t, ok)
	n, ok := ExtractInt64(section, "max_words")
	require.True(t, ok)
	assert.Equal(t, 12, n)
	_, ok = ExtractString(section, "max_words")
	assert.False(t, ok)
}
