// Package memory is an in-process docstore adapter: the default backend
// when no remote credentials are configured, and the fake the tests run
// against. Documents are kept as top-level JSON fields so merge
// semantics match the real store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/techcolloid1243/finance-planner/internal/core"
	"github.com/techcolloid1243/finance-planner/internal/docstore"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage

	// write counters, handy for asserting migration-once behavior
	sets   atomic.Int64
	merges atomic.Int64
}

var _ docstore.Client = (*Store)(nil)

func New() *Store {
	return &Store{docs: map[string]map[string]json.RawMessage{}}
}

func (s *Store) Get(_ context.Context, userID string) (core.FinanceState, bool, error) {
	s.mu.Lock()
	doc, ok := s.docs[userID]
	s.mu.Unlock()
	if !ok {
		return core.FinanceState{}, false, nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return core.FinanceState{}, false, fmt.Errorf("marshal document: %w", err)
	}
	var st core.FinanceState
	if err := json.Unmarshal(body, &st); err != nil {
		return core.FinanceState{}, false, fmt.Errorf("unmarshal document: %w", err)
	}
	return core.Normalize(st), true, nil
}

func (s *Store) Set(_ context.Context, userID string, st core.FinanceState) error {
	fields, err := topLevelFields(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[userID] = fields
	s.mu.Unlock()
	s.sets.Add(1)
	return nil
}

func (s *Store) Merge(_ context.Context, userID string, st core.FinanceState) error {
	fields, err := topLevelFields(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	doc, ok := s.docs[userID]
	if !ok {
		doc = map[string]json.RawMessage{}
		s.docs[userID] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	s.mu.Unlock()
	s.merges.Add(1)
	return nil
}

// Exists reports whether a document is present for the user.
func (s *Store) Exists(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[userID]
	return ok
}

// Sets returns the number of full-replace writes seen.
func (s *Store) Sets() int64 { return s.sets.Load() }

// Merges returns the number of merge writes seen.
func (s *Store) Merges() int64 { return s.merges.Load() }

func topLevelFields(st core.FinanceState) (map[string]json.RawMessage, error) {
	body, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("split state fields: %w", err)
	}
	return fields, nil
}
