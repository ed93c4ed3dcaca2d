// Package reader provides line-oriented access to log files and streams.
package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Line is a single raw log line with its origin.
type Line struct {
	// Text is the line content without the trailing newline.
	Text string

	// Source identifies where the line came from (file path or stream name).
	Source string

	// Num is the 1-based line number within the source.
	Num int
}

// LineSource provides an iterator over raw log lines.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next line, or io.EOF when the source is exhausted.
	Next(ctx context.Context) (*Line, error)

	// Close releases any resources held by the source.
	Close() error
}

// FileSource reads lines from a list of log files in order.
type FileSource struct {
	files []string

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	fileIndex      int
}

// NewFileSource creates a LineSource that reads from the given files.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		fileIndex: -1,
	}
}

// Next returns the next line across all files.
// Returns io.EOF when every file has been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Line, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		if s.currentScanner.Scan() {
			s.currentLine++
			return &Line{
				Text:   s.currentScanner.Text(),
				Source: s.currentSource,
				Num:    s.currentLine,
			}, nil
		}

		if err := s.currentScanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
		s.currentScanner = nil
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = newLineScanner(f)
	s.currentSource = path
	s.currentLine = 0

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	return nil
}

// ReaderSource reads lines from an io.Reader, typically stdin.
type ReaderSource struct {
	scanner *bufio.Scanner
	source  string
	line    int
}

// NewReaderSource creates a LineSource over r, labeling lines with name.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	return &ReaderSource{
		scanner: newLineScanner(r),
		source:  name,
	}
}

// Next returns the next line, or io.EOF when the reader is exhausted.
func (s *ReaderSource) Next(ctx context.Context) (*Line, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.scanner.Scan() {
		s.line++
		return &Line{
			Text:   s.scanner.Text(),
			Source: s.source,
			Num:    s.line,
		}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.source, err)
	}
	return nil, io.EOF
}

// Close is a no-op; the caller owns the underlying reader.
func (s *ReaderSource) Close() error {
	return nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	return sc
}

// ExpandSources resolves log source entries, each a file path or a glob
// pattern like "/var/log/celery/*.log", into a deduplicated, sorted list of
// file paths for NewFileSource. An entry that matches nothing is kept as a
// literal path so the eventual open failure names the missing file.
func ExpandSources(sources []string) ([]string, error) {
	included := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !included[path] {
			included[path] = true
			files = append(files, path)
		}
	}

	for _, source := range sources {
		matches, err := filepath.Glob(source)
		if err != nil {
			return nil, fmt.Errorf("invalid log source pattern %q: %w", source, err)
		}

		if len(matches) == 0 {
			add(source)
			continue
		}
		for _, match := range matches {
			add(match)
		}
	}

	// Sorted so multi-file runs read in a stable order
	sort.Strings(files)

	return files, nil
}
