package reports

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"ondc-conformance/internal/model"
)

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	Kind          model.Kind
	TransactionID string
	Limit         int
	Offset        int
}

// Stats summarises one day of reports.
type Stats struct {
	Date          string         `json:"date"`
	Reports       int            `json:"reports"`
	Violations    int            `json:"violations"`
	ByKind        map[string]int `json:"by_kind"`
	TopKeys       map[string]int `json:"top_keys"`
	LatestChecked string         `json:"latest_checked_at"`
}

// List returns the reports of day matching f, in append order.
func (s *Store) List(day time.Time, f Filter) ([]model.ValidationReport, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	out := []model.ValidationReport{}
	skipped := 0
	err := s.scan(day, func(r model.ValidationReport) bool {
		if f.Kind != "" && r.Kind != f.Kind {
			return true
		}
		if f.TransactionID != "" && r.Context.TransactionID != f.TransactionID {
			return true
		}
		if skipped < f.Offset {
			skipped++
			return true
		}
		out = append(out, r)
		return len(out) < f.Limit
	})
	return out, err
}

// Summary aggregates every report of day. Only the most frequent keys are
// kept in TopKeys.
func (s *Store) Summary(day time.Time, topKeys int) (*Stats, error) {
	st := &Stats{Date: day.UTC().Format("2006-01-02"), ByKind: map[string]int{}}
	counts := map[string]int{}
	err := s.scan(day, func(r model.ValidationReport) bool {
		st.Reports++
		st.Violations += len(r.Errors)
		st.ByKind[string(r.Kind)]++
		for _, e := range r.Errors {
			counts[e.Key]++
		}
		if r.CheckedAt > st.LatestChecked {
			st.LatestChecked = r.CheckedAt
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	st.TopKeys = top(counts, topKeys)
	return st, nil
}

// scan feeds every decodable line of the day's file to fn until it returns
// false. A missing file is an empty day.
func (s *Store) scan(day time.Time, fn func(model.ValidationReport) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path(day))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r model.ValidationReport
		if err := json.Unmarshal(line, &r); err != nil {
			zap.S().Warnf("reports: skipping undecodable line in %s: %v", f.Name(), err)
			continue
		}
		if !fn(r) {
			break
		}
	}
	return sc.Err()
}

func top(counts map[string]int, n int) map[string]int {
	if n <= 0 || len(counts) <= n {
		return counts
	}
	out := make(map[string]int, n)
	for len(out) < n {
		best, bestN := "", -1
		for k, c := range counts {
			if _, taken := out[k]; taken {
				continue
			}
			if c > bestN || (c == bestN && k < best) {
				best, bestN = k, c
			}
		}
		out[best] = bestN
	}
	return out
}
