/*
Package dictionary reads and writes the inputs an index is built from:
word lists for completion and document sets for search.

Supported formats, picked by file extension:

	.txt      one entry per line; '#' starts a comment line
	.bin      words only: int32 count, then per word uint16 length, bytes, uint32 frequency
	.msgpack  documents only: a msgpack array of {name, content} maps

All integers are little endian. The frequency column of .bin files is
carried for compatibility and ignored on load.
*/
package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // Plain text, one entry per line
	FormatBinary             // Length prefixed binary word list
	FormatMsgpack            // msgpack encoded documents
)

// MaxBinaryWords bounds the header of a binary word list.
const MaxBinaryWords = 1_000_000

// ErrUnknownFormat is returned for files whose format cannot be told
// from their name or that do not fit the expected kind of content.
var ErrUnknownFormat = errors.New("unknown dictionary format")

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		Extensions:  []string{".txt"},
		MinSize:     0,
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Word List",
		Extensions:  []string{".bin"},
		MinSize:     4, // word count header
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "Msgpack Document Set",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// FormatFromPath picks a format from the file extension only.
func FormatFromPath(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if FormatFromPath(filename) != expectedFormat {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, filepath.Ext(filename), formatInfo.Description, formatInfo.Extensions)
	}

	if expectedFormat == FormatBinary {
		return validateBinaryFormat(filename)
	}
	return nil
}

// validateBinaryFormat checks the word count header of a binary word list
func validateBinaryFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if err := checkWordCount(wordCount); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	log.Debugf("Binary file %s validated: %d words", filename, wordCount)
	return nil
}

func checkWordCount(wordCount int32) error {
	if wordCount < 0 {
		return fmt.Errorf("invalid word count %d (negative)", wordCount)
	}
	if wordCount > MaxBinaryWords {
		return fmt.Errorf("suspicious word count %d (more than %d)", wordCount, MaxBinaryWords)
	}
	return nil
}

// DetectFileFormat returns the format of filename after validating it.
func DetectFileFormat(filename string) (FileFormat, error) {
	format := FormatFromPath(filename)
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("%w: unable to detect format for file %s", ErrUnknownFormat, filename)
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return FormatUnknown, err
	}
	return format, nil
}
