package seqstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownStage is returned for a stage outside the lifecycle sequence.
var ErrUnknownStage = errors.New("seqstore: stage is not part of the lifecycle sequence")

// Violation is one earlier stage recorded with a later timestamp than the incoming one.
type Violation struct {
	Stage          string
	Timestamp      string
	EarlierStage   string
	EarlierStamped string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at %s is earlier than %s at %s", v.Stage, v.Timestamp, v.EarlierStage, v.EarlierStamped)
}

// Sequencer applies the lifecycle ordering rule on top of a Store.
type Sequencer struct {
	store     Store
	stages    []string
	index     map[string]int
	unordered map[string]struct{}
}

// NewSequencer orders stages as given. Stages in unordered are recorded but
// never compared against the sequence.
func NewSequencer(store Store, stages []string, unordered ...string) *Sequencer {
	s := &Sequencer{
		store:     store,
		stages:    append([]string(nil), stages...),
		index:     make(map[string]int, len(stages)),
		unordered: map[string]struct{}{},
	}
	for i, st := range stages {
		s.index[st] = i
	}
	for _, st := range unordered {
		s.unordered[st] = struct{}{}
	}
	return s
}

// Stages returns the canonical sequence.
func (s *Sequencer) Stages() []string {
	return append([]string(nil), s.stages...)
}

// Known reports whether stage can be observed.
func (s *Sequencer) Known(stage string) bool {
	if _, ok := s.unordered[stage]; ok {
		return true
	}
	_, ok := s.index[stage]
	return ok
}

// Observe records timestamp for stage in scope, persisting it before
// returning, then reports every earlier recorded stage whose timestamp is
// after the incoming one. Stages never seen are simply not compared.
func (s *Sequencer) Observe(ctx context.Context, scope, stage, timestamp string) ([]Violation, error) {
	if !s.Known(stage) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	incoming, err := parseTimestamp(timestamp)
	if err != nil {
		return nil, fmt.Errorf("seqstore: timestamp %q: %w", timestamp, err)
	}

	recorded, err := s.store.Update(ctx, scope, func(ts Timestamps) error {
		ts[stage] = timestamp
		return nil
	})
	if err != nil {
		return nil, err
	}

	pos, ordered := s.index[stage]
	if !ordered {
		return nil, nil
	}
	var violations []Violation
	for _, earlier := range s.stages[:pos] {
		prev, ok := recorded[earlier]
		if !ok {
			continue
		}
		prevTime, err := parseTimestamp(prev)
		if err != nil {
			zap.S().Warnf("seqstore: ignoring unparsable %s timestamp %q in scope %s", earlier, prev, scope)
			continue
		}
		if prevTime.After(incoming) {
			violations = append(violations, Violation{
				Stage:          stage,
				Timestamp:      timestamp,
				EarlierStage:   earlier,
				EarlierStamped: prev,
			})
		}
	}
	return violations, nil
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
