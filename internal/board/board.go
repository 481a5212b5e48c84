// Package board keeps one user's to-dos and node progress in memory and
// applies mutations optimistically: readers see the change at once, and
// the store result either confirms it or rolls it back.
package board

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/starpath/internal/analysis"
	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/todo"
)

// Board is a per-user local view. The mutex guards the view only and is
// never held while the store is being called.
type Board struct {
	userID string
	engine *progress.Engine
	todos  *todo.Service
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	items   []todo.Item
	records map[string]*progress.NodeProgress

	inflight sync.WaitGroup
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the board's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Board) { b.log = log.With().Str("component", "board").Logger() }
}

// WithClock overrides time.Now for optimistic timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// New creates an empty board for userID. Call Refresh to load it.
func New(userID string, engine *progress.Engine, todos *todo.Service, opts ...Option) *Board {
	b := &Board{
		userID:  userID,
		engine:  engine,
		todos:   todos,
		log:     zerolog.Nop(),
		now:     time.Now,
		records: make(map[string]*progress.NodeProgress),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// UserID returns the board's user.
func (b *Board) UserID() string {
	return b.userID
}

// Catalog returns the node catalog the board projects over.
func (b *Board) Catalog() *catalog.Catalog {
	return b.engine.Catalog()
}

// Refresh replaces the local view with the store's current state.
func (b *Board) Refresh(ctx context.Context) error {
	records, err := b.engine.Records(ctx, b.userID)
	if err != nil {
		return fmt.Errorf("refresh progress: %w", err)
	}
	items, err := b.todos.List(ctx, b.userID)
	if err != nil {
		return fmt.Errorf("refresh todos: %w", err)
	}

	b.mu.Lock()
	b.records = records
	b.items = items
	b.mu.Unlock()
	return nil
}

// Items returns a copy of the user's to-dos in creation order.
func (b *Board) Items() []todo.Item {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneItems(b.items)
}

// Item returns one to-do by ID.
func (b *Board) Item(id string) (todo.Item, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.items[i].Clone(), true
	}
	return todo.Item{}, false
}

// Nodes returns every catalog node merged with local progress and the
// task-completion projection.
func (b *Board) Nodes() []progress.NodeState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cat := b.engine.Catalog()
	return progress.Merge(cat, b.records, todo.TaskCounts(cat, b.items))
}

// Node returns a single merged node.
func (b *Board) Node(nodeID string) (progress.NodeState, bool) {
	for _, s := range b.Nodes() {
		if s.Node.ID == nodeID {
			return s, true
		}
	}
	return progress.NodeState{}, false
}

// Level is computed from mastered records only; the task projection
// never raises it.
func (b *Board) Level() int {
	return progress.Level(progress.MasteredCount(b.Nodes()))
}

// NodeStats rolls up the to-dos attached to nodeID.
func (b *Board) NodeStats(nodeID string) todo.CompletionStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return todo.NodeCompletionStats(b.engine.Catalog(), b.items, nodeID)
}

// CategoryStats rolls up the to-dos in category.
func (b *Board) CategoryStats(category catalog.Category) todo.CompletionStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return todo.CategoryCompletionStats(b.engine.Catalog(), b.items, category)
}

// Summary builds the per-category analysis. scores holds optional test
// scores per category.
func (b *Board) Summary(scores map[catalog.Category]int) analysis.Summary {
	states := b.Nodes()
	items := b.Items()
	return analysis.Summarize(b.engine.Catalog(), states, items, scores)
}

// Toggle flips a to-do's completion locally, then in the store.
func (b *Board) Toggle(ctx context.Context, id string) (todo.Item, error) {
	b.mu.Lock()
	i := b.indexOf(id)
	var before todo.Item
	if i >= 0 {
		before = b.items[i].Clone()
		b.items[i] = before.Toggled(b.now())
	}
	b.mu.Unlock()

	got, err := b.todos.Toggle(ctx, b.userID, id)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		if i >= 0 {
			b.replaceItem(before)
		}
		b.log.Warn().Err(err).Str("todo", id).Msg("toggle rolled back")
		return todo.Item{}, err
	}
	if !b.replaceItem(got) {
		b.items = append(b.items, got)
	}
	return got.Clone(), nil
}

// Add appends a draft to-do locally at once, then classifies and stores
// it. Until classification returns, readers see the draft at the
// category's fallback node.
func (b *Board) Add(ctx context.Context, text, category string) (todo.Item, error) {
	draft, err := b.todos.Draft(b.userID, text, category)
	if err != nil {
		return todo.Item{}, err
	}

	b.mu.Lock()
	b.items = append(b.items, draft.Clone())
	b.mu.Unlock()

	it := b.todos.Place(ctx, draft, category)
	b.mu.Lock()
	b.replaceItem(it)
	b.mu.Unlock()

	got, err := b.todos.AddItem(ctx, it)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.removeItem(it.ID)
		b.log.Warn().Err(err).Str("todo", it.ID).Msg("add rolled back")
		return todo.Item{}, err
	}
	b.replaceItem(got)
	return got.Clone(), nil
}

// Delete removes a to-do locally, then from the store. On failure the
// item returns to its old position.
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	i := b.indexOf(id)
	var before todo.Item
	if i >= 0 {
		before = b.items[i].Clone()
		b.items = slices.Delete(b.items, i, i+1)
	}
	b.mu.Unlock()

	err := b.todos.Delete(ctx, b.userID, id)
	if err == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= 0 && b.indexOf(id) < 0 {
		b.items = slices.Insert(b.items, min(i, len(b.items)), before)
	}
	b.log.Warn().Err(err).Str("todo", id).Msg("delete rolled back")
	return err
}

// UnlockNode marks a node active locally, then persists it through the
// engine.
func (b *Board) UnlockNode(ctx context.Context, nodeID string) (*progress.Result, error) {
	before, applied := b.applyLocal(nodeID, progress.StatusActive)

	res, err := b.engine.UnlockNode(ctx, b.userID, nodeID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		if applied {
			b.restore(nodeID, before)
		}
		b.log.Warn().Err(err).Str("node", nodeID).Msg("unlock rolled back")
		return nil, err
	}
	b.merge(res)
	return res, nil
}

// CompleteNode masters a node locally, then persists it and its
// propagation. Unlocks that did persist are kept even when the call
// reports a propagation failure.
func (b *Board) CompleteNode(ctx context.Context, nodeID string) (*progress.Result, error) {
	before, applied := b.applyLocal(nodeID, progress.StatusMastered)

	res, err := b.engine.CompleteNode(ctx, b.userID, nodeID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if res == nil {
		if applied {
			b.restore(nodeID, before)
		}
		b.log.Warn().Err(err).Str("node", nodeID).Msg("complete rolled back")
		return nil, err
	}
	b.merge(res)
	return res, err
}

// Reconcile runs a propagation pass and merges whatever it unlocked.
func (b *Board) Reconcile(ctx context.Context) (*progress.Result, error) {
	res, err := b.engine.Reconcile(ctx, b.userID)
	if res == nil {
		return nil, err
	}

	b.mu.Lock()
	for _, p := range res.Unlocked {
		b.records[p.NodeID] = p.Clone()
	}
	b.mu.Unlock()
	return res, err
}

// applyLocal moves nodeID to status in the local view unless it is
// already there or beyond. It reports the prior record and whether the
// view changed.
func (b *Board) applyLocal(nodeID string, status progress.Status) (*progress.NodeProgress, bool) {
	node, err := b.engine.Catalog().GetNode(nodeID)
	if err != nil {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	rec := b.records[nodeID]
	if progress.EffectiveStatus(node, rec).AtLeast(status) {
		return nil, false
	}

	now := b.now()
	next := rec.Clone()
	if next == nil {
		next = &progress.NodeProgress{UserID: b.userID, NodeID: nodeID, Category: node.Category}
	}
	next.Status = status
	if next.UnlockedAt == nil {
		next.UnlockedAt = &now
	}
	if status == progress.StatusMastered {
		if next.MasteredAt == nil {
			next.MasteredAt = &now
		}
		next.ProgressScore = 100
	}
	next.UpdatedAt = now
	b.records[nodeID] = next
	return rec.Clone(), true
}

func (b *Board) restore(nodeID string, before *progress.NodeProgress) {
	if before == nil {
		delete(b.records, nodeID)
		return
	}
	b.records[nodeID] = before
}

func (b *Board) merge(res *progress.Result) {
	// An unchanged node with a zero UpdatedAt was never persisted.
	if res.Changed || !res.Node.UpdatedAt.IsZero() {
		b.records[res.Node.NodeID] = res.Node.Clone()
	}
	for _, p := range res.Unlocked {
		b.records[p.NodeID] = p.Clone()
	}
}

func (b *Board) indexOf(id string) int {
	return slices.IndexFunc(b.items, func(it todo.Item) bool { return it.ID == id })
}

func (b *Board) replaceItem(it todo.Item) bool {
	if i := b.indexOf(it.ID); i >= 0 {
		b.items[i] = it.Clone()
		return true
	}
	return false
}

func (b *Board) removeItem(id string) {
	if i := b.indexOf(id); i >= 0 {
		b.items = slices.Delete(b.items, i, i+1)
	}
}

func cloneItems(items []todo.Item) []todo.Item {
	out := make([]todo.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
