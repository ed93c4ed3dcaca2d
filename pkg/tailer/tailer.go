// Package tailer follows a growing log file and emits appended lines.
package tailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Tailer watches a single log file and invokes OnLine for every complete
// line appended to it. Truncation (log rotation) resets the read position
// to the start of the file.
type Tailer struct {
	path string

	// OnLine is invoked for every complete appended line. Required.
	OnLine func(line string)

	// OnError is invoked for non-fatal read errors. Optional.
	OnError func(err error)

	fromStart bool
	offset    int64
	partial   []byte
}

// Option configures the Tailer.
type Option func(*Tailer)

// FromStart reads the whole existing file before following new writes.
// By default only lines appended after Run starts are emitted.
func FromStart() Option {
	return func(t *Tailer) {
		t.fromStart = true
	}
}

// New creates a Tailer for the given file. The file must exist.
func New(path string, opts ...Option) (*Tailer, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	t := &Tailer{path: absPath}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Run starts the follow loop. Blocks until the context is cancelled.
func (t *Tailer) Run(ctx context.Context) error {
	if t.OnLine == nil {
		return fmt.Errorf("OnLine callback is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory containing the file; rotation replaces the inode
	// and a watch on the file itself would go stale.
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	if !t.fromStart {
		stat, err := os.Stat(t.path)
		if err != nil {
			return fmt.Errorf("failed to stat file: %w", err)
		}
		t.offset = stat.Size()
	}

	// Pick up anything already present (or the whole file with FromStart).
	if err := t.drain(); err != nil {
		t.reportError(err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			absPath, err := filepath.Abs(event.Name)
			if err != nil || absPath != t.path {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// File was recreated (rotation): start over.
				t.offset = 0
				t.partial = nil
			}
			if err := t.drain(); err != nil {
				t.reportError(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.reportError(err)
		}
	}
}

// drain reads bytes appended since the last read and emits complete lines.
func (t *Tailer) drain() error {
	f, err := os.Open(t.path) // #nosec G304 -- user-provided path is expected
	if err != nil {
		return fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	// Truncated file: the writer rotated it in place.
	if stat.Size() < t.offset {
		t.offset = 0
		t.partial = nil
	}

	if stat.Size() == t.offset {
		return nil
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", t.path, err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", t.path, err)
	}
	t.offset += int64(len(data))

	t.emit(data)
	return nil
}

// emit appends data to the partial-line buffer and fires OnLine for each
// complete line. A trailing fragment without a newline is held back until
// the rest of the line arrives.
func (t *Tailer) emit(data []byte) {
	buf := append(t.partial, data...)

	for {
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimSuffix(buf[:idx], []byte("\r")))
		buf = buf[idx+1:]
		t.OnLine(line)
	}

	t.partial = append([]byte(nil), buf...)
}

func (t *Tailer) reportError(err error) {
	if t.OnError != nil {
		t.OnError(err)
	}
}
