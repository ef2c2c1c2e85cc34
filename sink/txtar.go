package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"golang.org/x/tools/txtar"
)

// TxtarSink collects fragments into one txtar archive, one file section per
// fragment, ordered by path.
type TxtarSink struct {
	// Comment is written before the first file section.
	Comment string

	mu    sync.Mutex
	files map[string][]byte
}

// NewTxtarSink returns an empty archive sink.
func NewTxtarSink(comment string) *TxtarSink {
	return &TxtarSink{Comment: comment, files: make(map[string][]byte)}
}

// WriteFile adds or replaces a file section.
func (s *TxtarSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[path] = append([]byte(nil), content...)
	return nil
}

// Archive returns the collected files as an archive.
func (s *TxtarSink) Archive() *txtar.Archive {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &txtar.Archive{}
	if s.Comment != "" {
		a.Comment = []byte(s.Comment + "\n")
	}
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		a.Files = append(a.Files, txtar.File{Name: p, Data: append([]byte(nil), s.files[p]...)})
	}
	return a
}

// WriteTo writes the formatted archive to w.
func (s *TxtarSink) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(txtar.Format(s.Archive()))
	return int64(n), err
}

// WriteArchive writes the formatted archive to the file at path.
func (s *TxtarSink) WriteArchive(path string) error {
	if err := os.WriteFile(path, txtar.Format(s.Archive()), 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// ReadArchive parses the txtar archive at path into a map of file contents.
func ReadArchive(path string) (map[string][]byte, error) {
	a, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	files := make(map[string][]byte, len(a.Files))
	for _, f := range a.Files {
		files[f.Name] = f.Data
	}
	return files, nil
}
