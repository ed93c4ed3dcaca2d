package reader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func drain(t *testing.T, src LineSource) []Line {
	t.Helper()
	var lines []Line
	for {
		line, err := src.Next(context.Background())
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		lines = append(lines, *line)
	}
}

func TestFileSource_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "line one\nline two\n")
	b := writeFile(t, dir, "b.log", "line three\n")

	src := NewFileSource([]string{a, b})
	defer src.Close()

	lines := drain(t, src)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0].Text != "line one" || lines[0].Source != a || lines[0].Num != 1 {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[2].Text != "line three" || lines[2].Source != b || lines[2].Num != 1 {
		t.Errorf("unexpected last line: %+v", lines[2])
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource([]string{filepath.Join(t.TempDir(), "absent.log")})
	defer src.Close()

	if _, err := src.Next(context.Background()); err == nil || err == io.EOF {
		t.Errorf("Next() error = %v, want open failure", err)
	}
}

func TestFileSource_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.log", "line\n")

	src := NewFileSource([]string{path})
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Next(ctx); err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestReaderSource(t *testing.T) {
	src := NewReaderSource(strings.NewReader("first\nsecond\n"), "stdin")
	defer src.Close()

	lines := drain(t, src)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[1].Text != "second" || lines[1].Source != "stdin" || lines[1].Num != 2 {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "worker1.log", "")
	writeFile(t, dir, "worker2.log", "")
	writeFile(t, dir, "notes.txt", "")

	files, err := ExpandSources([]string{filepath.Join(dir, "*.log")})
	if err != nil {
		t.Fatalf("ExpandSources() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2: %v", len(files), files)
	}
}

func TestExpandSources_LiteralAndDedupe(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "worker.log", "")

	files, err := ExpandSources([]string{path, path, "/nonexistent/path.log"})
	if err != nil {
		t.Fatalf("ExpandSources() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d entries, want 2 (deduped + literal): %v", len(files), files)
	}
}

func TestExpandSources_SortedStable(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.log", "")
	a := writeFile(t, dir, "a.log", "")

	files, err := ExpandSources([]string{b, a})
	if err != nil {
		t.Fatalf("ExpandSources() error = %v", err)
	}
	if len(files) != 2 || files[0] != a || files[1] != b {
		t.Errorf("got %v, want sorted [a.log b.log]", files)
	}
}
