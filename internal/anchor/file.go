package anchor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileSource serves a single on_confirm document from disk, whatever the
// transaction. The file is re-read on every lookup so it can be replaced
// between runs.
type FileSource struct {
	path string
	mu   sync.Mutex
}

// NewFileSource reads the on_confirm document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Get(_ context.Context, _ string) (*Anchor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("anchor: read %s: %w", f.path, err)
	}
	return Parse(raw)
}

// Put replaces the file with raw after checking it parses.
func (f *FileSource) Put(_ context.Context, raw []byte) (*Anchor, error) {
	a, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("anchor: write %s: %w", f.path, err)
	}
	return a, nil
}
