package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bastiangx/revindex/pkg/document"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// LoadWords reads a word list from a .txt or .bin file.
func LoadWords(path string) ([]string, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	var words []string
	switch format {
	case FormatText:
		words, err = ReadTextWords(file)
	case FormatBinary:
		words, err = ReadBinaryWords(file)
	default:
		return nil, fmt.Errorf("%w: %s holds documents, not words", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	log.Debugf("Loaded %d words from %s", len(words), path)
	return words, nil
}

// LoadDocuments reads a document set from a .txt or .msgpack file.
func LoadDocuments(path string) ([]document.Document, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document set: %w", err)
	}
	defer file.Close()

	var docs []document.Document
	switch format {
	case FormatText:
		docs, err = ReadTextDocuments(file)
	case FormatMsgpack:
		docs, err = ReadMsgpackDocuments(file)
	default:
		return nil, fmt.Errorf("%w: %s holds words, not documents", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	log.Debugf("Loaded %d documents from %s", len(docs), path)
	return docs, nil
}

// lines yields the non-empty, non-comment lines of r with their 1-based
// line numbers.
func lines(r io.Reader, fn func(n int, line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fn(n, line)
	}
	return scanner.Err()
}

// ReadTextWords reads one word per line. Anything after the first field
// (a frequency column, say) is ignored.
func ReadTextWords(r io.Reader) ([]string, error) {
	var words []string
	err := lines(r, func(_ int, line string) {
		words = append(words, strings.Fields(line)[0])
	})
	return words, err
}

// ReadTextDocuments reads one document per line, either "name<TAB>content"
// or bare content, in which case the name is "line-N".
func ReadTextDocuments(r io.Reader) ([]document.Document, error) {
	var docs []document.Document
	err := lines(r, func(n int, line string) {
		if name, content, ok := strings.Cut(line, "\t"); ok {
			docs = append(docs, document.Document{Name: strings.TrimSpace(name), Content: strings.TrimSpace(content)})
			return
		}
		docs = append(docs, document.Document{Name: fmt.Sprintf("line-%d", n), Content: strings.TrimSpace(line)})
	})
	return docs, err
}

// ReadBinaryWords reads the length prefixed binary word list.
// Format: 4 bytes count header + (2 bytes length + word + 4 bytes frequency) repeated
func ReadBinaryWords(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)

	var total int32
	if err := binary.Read(reader, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("reading word count header: %w", err)
	}
	if err := checkWordCount(total); err != nil {
		return nil, err
	}

	words := make([]string, 0, total)
	buf := make([]byte, 64)
	for i := range int(total) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("reading length of word %d: %w", i, unexpected(err))
		}
		if cap(buf) < int(wordLen) {
			buf = make([]byte, wordLen)
		}
		wordBytes := buf[:wordLen]
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, fmt.Errorf("reading word %d: %w", i, unexpected(err))
		}
		var freq uint32
		if err := binary.Read(reader, binary.LittleEndian, &freq); err != nil {
			return nil, fmt.Errorf("reading frequency of word %d: %w", i, unexpected(err))
		}
		words = append(words, string(wordBytes))
	}
	return words, nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// WriteBinaryWords writes words in the binary word list format with a
// frequency of 1 each.
func WriteBinaryWords(w io.Writer, words []string) error {
	if len(words) > MaxBinaryWords {
		return fmt.Errorf("too many words for binary format: %d", len(words))
	}
	writer := bufio.NewWriter(w)
	if err := binary.Write(writer, binary.LittleEndian, int32(len(words))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, word := range words {
		if len(word) > 0xFFFF {
			return fmt.Errorf("word too long for binary format: %d bytes", len(word))
		}
		if err := binary.Write(writer, binary.LittleEndian, uint16(len(word))); err != nil {
			return fmt.Errorf("writing word length: %w", err)
		}
		if _, err := writer.WriteString(word); err != nil {
			return fmt.Errorf("writing word %s: %w", word, err)
		}
		if err := binary.Write(writer, binary.LittleEndian, uint32(1)); err != nil {
			return fmt.Errorf("writing frequency for word %s: %w", word, err)
		}
	}
	return writer.Flush()
}

// ReadMsgpackDocuments decodes a msgpack array of documents.
func ReadMsgpackDocuments(r io.Reader) ([]document.Document, error) {
	var docs []document.Document
	if err := msgpack.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	return docs, nil
}

// WriteMsgpackDocuments encodes docs as a msgpack array.
func WriteMsgpackDocuments(w io.Writer, docs []document.Document) error {
	if docs == nil {
		docs = []document.Document{}
	}
	return msgpack.NewEncoder(w).Encode(docs)
}

// SaveWords writes words to path; the format follows the extension.
func SaveWords(path string, words []string) error {
	return saveFile(path, func(w io.Writer, format FileFormat) error {
		switch format {
		case FormatBinary:
			return WriteBinaryWords(w, words)
		case FormatText:
			return writeLines(w, words)
		}
		return fmt.Errorf("%w: cannot store words in %s", ErrUnknownFormat, path)
	})
}

// SaveDocuments writes docs to path; the format follows the extension.
func SaveDocuments(path string, docs []document.Document) error {
	return saveFile(path, func(w io.Writer, format FileFormat) error {
		switch format {
		case FormatMsgpack:
			return WriteMsgpackDocuments(w, docs)
		case FormatText:
			out := make([]string, len(docs))
			for i, d := range docs {
				out[i] = d.Name + "\t" + strings.Join(strings.Fields(d.Content), " ")
			}
			return writeLines(w, out)
		}
		return fmt.Errorf("%w: cannot store documents in %s", ErrUnknownFormat, path)
	})
}

func saveFile(path string, write func(io.Writer, FileFormat) error) error {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeLines(w io.Writer, entries []string) error {
	writer := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := writer.WriteString(e + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}
