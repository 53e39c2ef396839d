package api

import (
	"sync"
	"time"
)

// Outcome is the externally visible state of one submitted request.
type Outcome struct {
	Status   string `json:"status"` // pending | done | error | cancelled
	Response string `json:"response,omitempty"`
	Err      string `json:"error,omitempty"`
}

// ResultStore tracks request outcomes by id so clients can poll after the
// 202 from /ask. Entries are removed once fetched in a terminal state.
type ResultStore struct {
	mu      sync.Mutex
	results map[string]Outcome
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]Outcome),
	}
}

// MarkPending registers a fresh request. The completion event can race the
// registration, so an id that already has an outcome is left alone.
func (s *ResultStore) MarkPending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		s.results[id] = Outcome{Status: "pending"}
	}
}

func (s *ResultStore) Put(id string, out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = out
}

func (s *ResultStore) Get(id string) (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.results[id]
	return out, ok
}

// Delete removes a finished entry to avoid unbounded growth.
func (s *ResultStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, id)
}

// MarkCancelled flips every pending entry to cancelled. The coordinator is
// single-flight so at most one entry is actually pending.
func (s *ResultStore) MarkCancelled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, out := range s.results {
		if out.Status == "pending" {
			s.results[id] = Outcome{Status: "cancelled"}
		}
	}
}

// Wait polls for a terminal outcome, for tests and synchronous callers.
func (s *ResultStore) Wait(id string, timeout time.Duration) Outcome {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
		out, ok := s.Get(id)
		if ok && out.Status != "pending" {
			return out
		}
	}
	return Outcome{Status: "timeout", Err: "timeout waiting for result"}
}
