package progress

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/starpath/internal/store"
)

var errInjected = errors.New("injected failure")

// memRepo is an in-memory ProgressRepo with per-node write failures.
type memRepo struct {
	mu      sync.Mutex
	rows    map[string]store.ProgressRecord
	failOn  map[string]bool
	writes  int
	listErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:   make(map[string]store.ProgressRecord),
		failOn: make(map[string]bool),
	}
}

func key(userID, nodeID string) string { return userID + "/" + nodeID }

func (r *memRepo) List(_ context.Context, userID string) ([]store.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []store.ProgressRecord
	for _, rec := range r.rows {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) Get(_ context.Context, userID, nodeID string) (*store.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[key(userID, nodeID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memRepo) Upsert(_ context.Context, rec store.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn[rec.NodeID] {
		return errInjected
	}
	r.writes++
	r.rows[key(rec.UserID, rec.NodeID)] = rec
	return nil
}

func (r *memRepo) DeleteUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, rec := range r.rows {
		if rec.UserID == userID {
			delete(r.rows, k)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) status(userID, nodeID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[key(userID, nodeID)].Status
}

// memEvents records transitions only.
type memEvents struct {
	mu          sync.Mutex
	transitions []store.TransitionEventData
}

func (e *memEvents) AppendLLMRequest(context.Context, store.LLMRequestEventData) error { return nil }

func (e *memEvents) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMRequestEvent, error) {
	return nil, nil
}

func (e *memEvents) GetLLMEvent(context.Context, int) (*store.LLMRequestEvent, error) {
	return nil, store.ErrNotFound
}

func (e *memEvents) LLMUsageByPurpose(context.Context) ([]store.LLMUsageStats, error) {
	return nil, nil
}

func (e *memEvents) LLMUsageByModel(context.Context) ([]store.LLMModelUsage, error) {
	return nil, nil
}

func (e *memEvents) AppendTransition(_ context.Context, d store.TransitionEventData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transitions = append(e.transitions, d)
	return nil
}

func (e *memEvents) QueryTransitions(context.Context, string, store.QueryOpts) ([]store.TransitionEvent, error) {
	return nil, nil
}
