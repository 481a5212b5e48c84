package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/store"
)

// Transition triggers recorded in the event log.
const (
	TriggerUnlock    = "unlock"
	TriggerComplete  = "complete"
	TriggerPropagate = "propagate"
)

// Engine is the single writer of NodeProgress. It merges persisted records
// with catalog defaults and runs unlock propagation.
type Engine struct {
	catalog   *catalog.Catalog
	repo      store.ProgressRepo
	eventRepo store.EventRepo
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventRepo records every persisted transition in the event log.
func WithEventRepo(repo store.EventRepo) Option {
	return func(e *Engine) { e.eventRepo = repo }
}

// WithLogger sets the engine's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log.With().Str("component", "progress-engine").Logger() }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine over a catalog and progress store.
func NewEngine(cat *catalog.Catalog, repo store.ProgressRepo, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		repo:    repo,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's node catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Result describes the persisted effect of UnlockNode or CompleteNode.
type Result struct {
	// Node is the target node's record after the call.
	Node NodeProgress

	// Changed is false when the target was already at the requested status.
	Changed bool

	// Unlocked holds nodes moved from locked to available by propagation.
	Unlocked []NodeProgress

	// Failed lists node IDs whose propagation upsert failed.
	Failed []string
}

// Records loads every persisted record for a user keyed by node ID.
func (e *Engine) Records(ctx context.Context, userID string) (map[string]*NodeProgress, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	rows, err := e.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list progress: %w", ErrPersistence, err)
	}
	out := make(map[string]*NodeProgress, len(rows))
	for _, r := range rows {
		p := FromRecord(r)
		out[p.NodeID] = &p
	}
	return out, nil
}

// Nodes returns every catalog node merged with the user's progress and the
// given task counts (which may be nil).
func (e *Engine) Nodes(ctx context.Context, userID string, counts map[string]TaskCounts) ([]NodeState, error) {
	records, err := e.Records(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Merge(e.catalog, records, counts), nil
}

// Level returns the user's level from authoritative mastered nodes.
func (e *Engine) Level(ctx context.Context, userID string) (int, error) {
	records, err := e.Records(ctx, userID)
	if err != nil {
		return 0, err
	}
	return Level(MasteredCount(Merge(e.catalog, records, nil))), nil
}

// UnlockNode moves a node to active. It is a no-op, with no write and no
// timestamp change, when the node is already active or mastered. A locked
// node whose requirements are not all mastered is refused with ErrLocked.
func (e *Engine) UnlockNode(ctx context.Context, userID, nodeID string) (*Result, error) {
	node, rec, err := e.target(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}

	from := EffectiveStatus(node, rec)
	if from.AtLeast(StatusActive) {
		return &Result{Node: e.materialize(node, rec, userID, from)}, nil
	}
	if from == StatusLocked {
		records, err := e.Records(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !e.catalog.RequirementsMet(nodeID, masteredSet(records)) {
			return nil, fmt.Errorf("%w: %q", ErrLocked, nodeID)
		}
	}

	now := e.now()
	next := e.materialize(node, rec, userID, from)
	next.Status = StatusActive
	if next.UnlockedAt == nil {
		next.UnlockedAt = &now
	}
	next.UpdatedAt = now

	if err := e.repo.Upsert(ctx, next.Record()); err != nil {
		return nil, fmt.Errorf("%w: unlock %s: %w", ErrPersistence, nodeID, err)
	}
	e.recordTransition(ctx, next, from, TriggerUnlock)

	e.log.Debug().Str("user", userID).Str("node", nodeID).Str("from", string(from)).Msg("node unlocked")
	return &Result{Node: next, Changed: true}, nil
}

// CompleteNode masters a node and then runs one propagation pass over the
// whole catalog, moving every locked node whose requirements are all
// mastered to available. A locked target is mastered too: completion is
// the explicit correction path and does not check requirements.
//
// If the mastering write fails nothing is propagated. Each propagation
// unlock is an independent upsert: successes are kept when a later one
// fails, and the failures are reported in both Result.Failed and the
// returned error.
func (e *Engine) CompleteNode(ctx context.Context, userID, nodeID string) (*Result, error) {
	node, _, err := e.target(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}

	records, err := e.Records(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := records[nodeID]
	from := EffectiveStatus(node, rec)

	res := &Result{}
	if from == StatusMastered {
		res.Node = e.materialize(node, rec, userID, from)
	} else {
		now := e.now()
		next := e.materialize(node, rec, userID, from)
		next.Status = StatusMastered
		if next.MasteredAt == nil {
			next.MasteredAt = &now
		}
		if next.UnlockedAt == nil {
			next.UnlockedAt = &now
		}
		next.ProgressScore = 100
		next.UpdatedAt = now

		if err := e.repo.Upsert(ctx, next.Record()); err != nil {
			return nil, fmt.Errorf("%w: complete %s: %w", ErrPersistence, nodeID, err)
		}
		e.recordTransition(ctx, next, from, TriggerComplete)
		records[nodeID] = &next
		res.Node = next
		res.Changed = true
	}

	if err := e.propagate(ctx, userID, records, res); err != nil {
		return res, err
	}
	return res, nil
}

// Reconcile runs a propagation pass without mastering anything. It picks
// up unlocks that became due after a catalog change.
func (e *Engine) Reconcile(ctx context.Context, userID string) (*Result, error) {
	records, err := e.Records(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	if err := e.propagate(ctx, userID, records, res); err != nil {
		return res, err
	}
	return res, nil
}

// Reset deletes every persisted record for a user, returning all nodes to
// their catalog defaults.
func (e *Engine) Reset(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	n, err := e.repo.DeleteUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: reset: %w", ErrPersistence, err)
	}
	e.log.Info().Str("user", userID).Int("records", n).Msg("progress reset")
	return n, nil
}

// propagate is a single pass in topological order. Propagation only ever
// produces available, never mastered, so the mastered set cannot grow
// during the pass and one pass reaches the same state a fixpoint would.
func (e *Engine) propagate(ctx context.Context, userID string, records map[string]*NodeProgress, res *Result) error {
	mastered := masteredSet(records)

	var errs []error
	for _, n := range e.catalog.TopologicalOrder() {
		rec := records[n.ID]
		if EffectiveStatus(n, rec) != StatusLocked {
			continue
		}
		if !e.catalog.RequirementsMet(n.ID, mastered) {
			continue
		}

		now := e.now()
		next := e.materialize(n, rec, userID, StatusLocked)
		next.Status = StatusAvailable
		if next.UnlockedAt == nil {
			next.UnlockedAt = &now
		}
		next.UpdatedAt = now

		if err := e.repo.Upsert(ctx, next.Record()); err != nil {
			e.log.Warn().Err(err).Str("user", userID).Str("node", n.ID).Msg("propagation unlock failed")
			res.Failed = append(res.Failed, n.ID)
			errs = append(errs, fmt.Errorf("unlock %s: %w", n.ID, err))
			continue
		}
		e.recordTransition(ctx, next, StatusLocked, TriggerPropagate)
		records[n.ID] = &next
		res.Unlocked = append(res.Unlocked, next)
	}

	if len(res.Unlocked) > 0 {
		e.log.Info().Str("user", userID).Int("unlocked", len(res.Unlocked)).Msg("propagation unlocked nodes")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: propagation incomplete: %w", ErrPersistence, errors.Join(errs...))
	}
	return nil
}

// target validates the user and node and loads the node's record.
func (e *Engine) target(ctx context.Context, userID, nodeID string) (catalog.Node, *NodeProgress, error) {
	if userID == "" {
		return catalog.Node{}, nil, ErrUnauthenticated
	}
	node, err := e.catalog.GetNode(nodeID)
	if err != nil {
		return catalog.Node{}, nil, fmt.Errorf("%w: %q", ErrNotFound, nodeID)
	}
	row, err := e.repo.Get(ctx, userID, nodeID)
	if err != nil {
		return catalog.Node{}, nil, fmt.Errorf("%w: get %s: %w", ErrPersistence, nodeID, err)
	}
	if row == nil {
		return node, nil, nil
	}
	p := FromRecord(*row)
	return node, &p, nil
}

// materialize returns a copy of rec, or a fresh record at status st when
// nothing is persisted yet.
func (e *Engine) materialize(n catalog.Node, rec *NodeProgress, userID string, st Status) NodeProgress {
	if rec != nil {
		c := rec.Clone()
		c.Status = st
		if c.Category == "" {
			c.Category = n.Category
		}
		return *c
	}
	return NodeProgress{
		UserID:   userID,
		NodeID:   n.ID,
		Category: n.Category,
		Status:   st,
	}
}

func (e *Engine) recordTransition(ctx context.Context, p NodeProgress, from Status, trigger string) {
	if e.eventRepo == nil {
		return
	}
	err := e.eventRepo.AppendTransition(ctx, store.TransitionEventData{
		UserID:  p.UserID,
		NodeID:  p.NodeID,
		From:    string(from),
		To:      string(p.Status),
		Trigger: trigger,
	})
	// The transition is already persisted; audit failures are only logged.
	if err != nil {
		e.log.Warn().Err(err).Str("node", p.NodeID).Msg("failed to record transition event")
	}
}
