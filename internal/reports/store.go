// Package reports appends non-empty validation reports to daily JSONL files.
package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"ondc-conformance/internal/model"
)

// DefaultDir is used when no directory is configured.
const DefaultDir = "./data/reports"

// Store writes one line per report to <dir>/reports_<date>.jsonl.
type Store struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewStore appends under dir, DefaultDir when empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{dir: dir, now: time.Now}
}

// Append writes r. A report without an id gets one.
func (s *Store) Append(r *model.ValidationReport) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("reports: encode %s: %w", r.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path(s.now()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(data, '\n'))
	return err
}

// Path returns the file reports of day t are appended to.
func (s *Store) Path(t time.Time) string { return s.path(t) }

func (s *Store) path(t time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("reports_%s.jsonl", t.UTC().Format("2006-01-02")))
}
