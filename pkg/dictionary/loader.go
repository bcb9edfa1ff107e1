// Package dictionary feeds word lists into a trie.
//
// Two on-disk formats are read: plain text, one "word" or "word, priority" per line, and
// the binary chunk format (dict_NNNN.bin) made of a little-endian int32 entry count
// followed by entries of uint16 length, word bytes and uint16 rank.
package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/dlbserve/internal/utils"
	"github.com/bastiangx/dlbserve/pkg/dlb"
	"github.com/charmbracelet/log"
	"golang.org/x/exp/mmap"
)

// maxLineLength bounds a single text dictionary line.
const maxLineLength = 1 << 20

// Sink receives loaded words. *dlb.Trie satisfies it.
type Sink interface {
	Insert(word string, priority int) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(word string, priority int) error

// Insert calls f.
func (f SinkFunc) Insert(word string, priority int) error {
	return f(word, priority)
}

// Stats counts what a load did.
type Stats struct {
	Loaded  int
	Skipped int
}

func (s *Stats) add(o Stats) {
	s.Loaded += o.Loaded
	s.Skipped += o.Skipped
}

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// ParseLine splits a text dictionary line into word and priority.
// ok is false for blank lines and # comments. A missing priority is 0, and a
// non-numeric tail after the last comma is part of the word, so "a,b" is one word.
func ParseLine(line string) (word string, priority int, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", 0, false, nil
	}
	if !strings.Contains(line, ",") {
		return line, 0, true, nil
	}
	word, priority, err = ParseEntry(line)
	if errors.Is(err, strconv.ErrSyntax) {
		return line, 0, true, nil
	}
	if err != nil {
		return "", 0, false, err
	}
	return word, priority, true, nil
}

// ParseEntry parses a strict "word, priority" pair, as written to history files.
func ParseEntry(line string) (word string, priority int, err error) {
	line = strings.TrimSpace(line)
	idx := strings.LastIndexByte(line, ',')
	if idx < 0 {
		return "", 0, fmt.Errorf("missing priority in %q", line)
	}
	priority, err = strconv.Atoi(strings.TrimSpace(line[idx+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid priority in %q: %w", line, err)
	}
	word = strings.TrimSpace(line[:idx])
	if word == "" {
		return "", 0, fmt.Errorf("missing word in %q", line)
	}
	return word, priority, nil
}

// insert hands one word to the sink, skipping words the trie cannot hold.
func insert(sink Sink, word string, priority int, stats *Stats) error {
	err := sink.Insert(word, priority)
	switch {
	case err == nil:
		stats.Loaded++
		return nil
	case errors.Is(err, dlb.ErrInvalidSymbol):
		log.Warnf("Skipping word %q: %v", word, err)
		stats.Skipped++
		return nil
	default:
		return err
	}
}

// ReadText loads a text dictionary from r. maxWords <= 0 loads everything.
func ReadText(r io.Reader, sink Sink, maxWords int) (Stats, error) {
	var stats Stats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if maxWords > 0 && stats.Loaded >= maxWords {
			break
		}
		word, priority, ok, err := ParseLine(sc.Text())
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}
		if err := insert(sink, word, priority, &stats); err != nil {
			return stats, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return stats, nil
}

// LoadText maps a text dictionary file read-only and loads it into sink.
func LoadText(path string, sink Sink, maxWords int) (Stats, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer r.Close()

	stats, err := ReadText(io.NewSectionReader(r, 0, int64(r.Len())), sink, maxWords)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Loaded %d words from %s (%d skipped)", stats.Loaded, path, stats.Skipped)
	return stats, nil
}

// rankToPriority converts a chunk rank to a priority: rank 1 becomes 65535.
func rankToPriority(rank uint16) int {
	return 65536 - int(rank)
}

// ReadChunk loads one binary chunk from r, stopping after maxWords (<= 0 means all).
func ReadChunk(r io.Reader, sink Sink, maxWords int) (Stats, error) {
	var stats Stats
	reader := bufio.NewReader(r)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return stats, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 {
		return stats, fmt.Errorf("invalid word count %d in chunk header", totalEntries)
	}

	for i := 0; i < int(totalEntries); i++ {
		if maxWords > 0 && stats.Loaded >= maxWords {
			break
		}
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			return stats, fmt.Errorf("failed to read word length of entry %d: %w", i, err)
		}
		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return stats, fmt.Errorf("failed to read word of entry %d: %w", i, err)
		}
		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return stats, fmt.Errorf("failed to read rank of entry %d: %w", i, err)
		}
		if err := insert(sink, string(wordBytes), rankToPriority(rank), &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// LoadChunk loads a single chunk file.
func LoadChunk(path string, sink Sink, maxWords int) (Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open chunk file %s: %w", path, err)
	}
	defer file.Close()

	stats, err := ReadChunk(file, sink, maxWords)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Chunk %s loaded: %d words", path, stats.Loaded)
	return stats, nil
}

// GetAvailableChunks scans dir for dict_NNNN.bin files, sorted by ID
func GetAvailableChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Debugf("Ignoring chunk file with non-numeric id: %s", file)
			continue
		}
		wordCount, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
		}
		chunks = append(chunks, ChunkInfo{ID: id, Filename: file, WordCount: wordCount})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// chunkWordCount reads the word count from a chunk file's header
func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// LoadChunks loads the chunks of dir in ID order until maxWords words are loaded
// (<= 0 loads all of them).
func LoadChunks(dir string, sink Sink, maxWords int) (Stats, error) {
	chunks, err := GetAvailableChunks(dir)
	if err != nil {
		return Stats{}, err
	}
	if len(chunks) == 0 {
		return Stats{}, fmt.Errorf("no chunk files found in %s", dir)
	}
	log.Debugf("Found %d chunk files", len(chunks))

	var total Stats
	for _, chunk := range chunks {
		budget := 0
		if maxWords > 0 {
			budget = maxWords - total.Loaded
			if budget <= 0 {
				break
			}
		}
		stats, err := LoadChunk(chunk.Filename, sink, budget)
		total.add(stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteChunk writes entries as a chunk, ranked 1..n in the order given.
// Pass entries already sorted by priority; ranks past 65535 saturate.
func WriteChunk(w io.Writer, entries []dlb.Entry) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(entries))); err != nil {
		return fmt.Errorf("failed to write chunk header: %w", err)
	}
	ranks := utils.CreateRankList(len(entries))
	for i, e := range entries {
		if len(e.Word) > 0xFFFF {
			return fmt.Errorf("word of %d bytes does not fit a chunk entry", len(e.Word))
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, e.Word); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, ranks[i]); err != nil {
			return err
		}
	}
	return nil
}

// SaveChunk writes entries to path with WriteChunk.
func SaveChunk(path string, entries []dlb.Entry) error {
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteChunk(w, entries)
	})
}
