package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatText                // Plain text, one word per line
	FormatChunk               // Single binary chunk
	FormatChunkDir            // Directory of dict_NNNN.bin chunks
)

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		MinSize:     0, // an empty word list is a valid empty dictionary
	},
	FormatChunk: {
		Format:      FormatChunk,
		Description: "Binary Chunk Dictionary",
		MinSize:     4, // word count header
	},
	FormatChunkDir: {
		Format:      FormatChunkDir,
		Description: "Chunked Binary Dictionary Directory",
	},
}

// DetectFileFormat picks the format of path: directories hold chunks, .bin files are
// chunks, anything else is read as text.
func DetectFileFormat(path string) (FileFormat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return FormatChunkDir, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		return FormatChunk, nil
	}
	return FormatText, nil
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(path string, expected FileFormat) error {
	formatInfo, exists := supportedFormats[expected]
	if !exists {
		return fmt.Errorf("unknown format: %v", expected)
	}
	fileInfo, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if expected == FormatChunkDir {
		if !fileInfo.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		return nil
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory, expected %s", path, formatInfo.Description)
	}
	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			path, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}
	if expected == FormatChunk {
		count, err := chunkWordCount(path)
		if err != nil {
			return fmt.Errorf("failed to read header from %s: %w", path, err)
		}
		if count < 0 {
			return fmt.Errorf("invalid word count in %s: %d (negative)", path, count)
		}
		log.Debugf("Binary file %s validated: %d words", path, count)
	}
	return nil
}

// Load detects the format of path and loads it into sink.
// maxWords <= 0 loads everything.
func Load(path string, sink Sink, maxWords int) (Stats, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return Stats{}, err
	}
	if err := ValidateFileFormat(path, format); err != nil {
		return Stats{}, err
	}
	log.Debugf("Loading %s as %s", path, format)

	switch format {
	case FormatChunkDir:
		return LoadChunks(path, sink, maxWords)
	case FormatChunk:
		return LoadChunk(path, sink, maxWords)
	default:
		return LoadText(path, sink, maxWords)
	}
}
