package seqstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// FileStore writes one JSON object per scope under dir. Files are always
// rewritten in full through a temp file and rename.
// The lock is per process; separate processes sharing dir are not coordinated.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed and keeps one <scope>.json file per scope in it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("seqstore: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(scope string) string {
	return filepath.Join(f.dir, SanitizeScope(scope)+".json")
}

func (f *FileStore) Load(_ context.Context, scope string) (Timestamps, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(f.path(scope))
}

func (f *FileStore) Update(_ context.Context, scope string, fn func(Timestamps) error) (Timestamps, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.path(scope)
	ts, err := f.read(p)
	if err != nil {
		return nil, err
	}
	if err := fn(ts); err != nil {
		return nil, err
	}
	if err := f.write(p, ts); err != nil {
		return nil, err
	}
	return ts.Clone(), nil
}

func (f *FileStore) read(p string) (Timestamps, error) {
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Timestamps{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seqstore: read %s: %w", p, err)
	}
	ts := Timestamps{}
	if len(data) == 0 {
		return ts, nil
	}
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("seqstore: decode %s: %w", p, err)
	}
	return ts, nil
}

func (f *FileStore) write(p string, ts Timestamps) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".seq-*.tmp")
	if err != nil {
		return fmt.Errorf("seqstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("seqstore: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("seqstore: sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("seqstore: replace %s: %w", p, err)
	}
	return nil
}
