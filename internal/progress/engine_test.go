package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/starpath/internal/catalog"
)

const user = "u1"

// healthCatalog is the minimal map: center, three roots, and
// health-1, health-2 feeding health-4.
func healthCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	nodes := []catalog.Node{
		{ID: "center", Kind: catalog.KindCenter, Category: catalog.CategoryCenter, Active: true},
		{ID: "psychology-root", Kind: catalog.KindRoot, Category: catalog.CategoryPsychology, Active: true},
		{ID: "health-root", Kind: catalog.KindRoot, Category: catalog.CategoryHealth, Active: true},
		{ID: "skill-root", Kind: catalog.KindRoot, Category: catalog.CategorySkill, Active: true},
		{ID: "health-1", Kind: catalog.KindLeaf, Category: catalog.CategoryHealth, DisplayOrder: 1, Active: true},
		{ID: "health-2", Kind: catalog.KindLeaf, Category: catalog.CategoryHealth, DisplayOrder: 2, Active: true},
		{ID: "health-4", Kind: catalog.KindLeaf, Category: catalog.CategoryHealth, DisplayOrder: 4, Active: true,
			Requirements: []string{"health-1", "health-2"}},
	}
	c, err := catalog.New("v0.0.1", nodes, nil)
	require.NoError(t, err)
	return c
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newTestEngine(t *testing.T, cat *catalog.Catalog) (*Engine, *memRepo, *memEvents, *fixedClock) {
	t.Helper()
	repo := newMemRepo()
	events := &memEvents{}
	clock := &fixedClock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	e := NewEngine(cat, repo, WithEventRepo(events), WithClock(clock.now))
	return e, repo, events, clock
}

func statusOf(t *testing.T, e *Engine, nodeID string) Status {
	t.Helper()
	states, err := e.Nodes(context.Background(), user, nil)
	require.NoError(t, err)
	for _, s := range states {
		if s.Node.ID == nodeID {
			return s.Status
		}
	}
	t.Fatalf("node %s not in view", nodeID)
	return ""
}

func TestScenario_HealthPath(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := newTestEngine(t, healthCatalog(t))

	assert.Equal(t, StatusActive, statusOf(t, e, "center"))
	assert.Equal(t, StatusActive, statusOf(t, e, "health-root"))
	assert.Equal(t, StatusAvailable, statusOf(t, e, "health-1"))
	assert.Equal(t, StatusLocked, statusOf(t, e, "health-4"))

	_, err := e.CompleteNode(ctx, user, "health-1")
	require.NoError(t, err)
	assert.Equal(t, StatusLocked, statusOf(t, e, "health-4"))

	res, err := e.CompleteNode(ctx, user, "health-2")
	require.NoError(t, err)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, "health-4", res.Unlocked[0].NodeID)
	assert.Equal(t, StatusAvailable, statusOf(t, e, "health-4"))

	level, err := e.Level(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
}

func TestCompleteNode_PropagatesOnLastRequirement(t *testing.T) {
	ctx := context.Background()
	e, repo, events, clock := newTestEngine(t, catalog.Default())

	// health-4 needs health-1 and health-2; health-3 needs health-1.
	res, err := e.CompleteNode(ctx, user, "health-1")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, StatusMastered, res.Node.Status)
	require.NotNil(t, res.Node.MasteredAt)
	assert.Equal(t, clock.t, *res.Node.MasteredAt)
	assert.Equal(t, 100, res.Node.ProgressScore)

	var unlocked []string
	for _, u := range res.Unlocked {
		unlocked = append(unlocked, u.NodeID)
		require.NotNil(t, u.UnlockedAt)
	}
	assert.Equal(t, []string{"health-3"}, unlocked)
	assert.Empty(t, repo.status(user, "health-4"))

	clock.t = clock.t.Add(time.Hour)
	res, err = e.CompleteNode(ctx, user, "health-2")
	require.NoError(t, err)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, "health-4", res.Unlocked[0].NodeID)
	assert.Equal(t, clock.t, *res.Unlocked[0].UnlockedAt)
	assert.Equal(t, string(StatusAvailable), repo.status(user, "health-4"))

	var triggers []string
	for _, ev := range events.transitions {
		triggers = append(triggers, ev.NodeID+":"+ev.Trigger)
	}
	assert.Equal(t, []string{
		"health-1:complete", "health-3:propagate",
		"health-2:complete", "health-4:propagate",
	}, triggers)
}

func TestCompleteNode_NoPrematureUnlock(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _ := newTestEngine(t, catalog.Default())

	_, err := e.CompleteNode(ctx, user, "skill-2")
	require.NoError(t, err)

	// skill-4 needs skill-2 and skill-3; skill-3 is not mastered.
	assert.Equal(t, StatusLocked, statusOf(t, e, "skill-4"))
	assert.Empty(t, repo.status(user, "skill-4"))
}

func TestCompleteNode_AlreadyMasteredKeepsTimestamp(t *testing.T) {
	ctx := context.Background()
	e, repo, _, clock := newTestEngine(t, catalog.Default())

	first, err := e.CompleteNode(ctx, user, "skill-1")
	require.NoError(t, err)
	writes := repo.writes

	clock.t = clock.t.Add(24 * time.Hour)
	again, err := e.CompleteNode(ctx, user, "skill-1")
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, *first.Node.MasteredAt, *again.Node.MasteredAt)
	assert.Equal(t, writes, repo.writes)
}

func TestCompleteNode_TriggerFailureSkipsPropagation(t *testing.T) {
	ctx := context.Background()
	e, repo, events, _ := newTestEngine(t, catalog.Default())
	repo.failOn["health-1"] = true

	res, err := e.CompleteNode(ctx, user, "health-1")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errInjected)
	assert.Zero(t, repo.writes)
	assert.Empty(t, events.transitions)
}

func TestCompleteNode_PartialPropagationFailure(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _ := newTestEngine(t, catalog.Default())

	_, err := e.CompleteNode(ctx, user, "psychology-2")
	require.NoError(t, err)

	// Mastering psychology-1 unlocks psychology-3 and psychology-4.
	repo.failOn["psychology-3"] = true
	res, err := e.CompleteNode(ctx, user, "psychology-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	require.NotNil(t, res)
	assert.Equal(t, []string{"psychology-3"}, res.Failed)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, "psychology-4", res.Unlocked[0].NodeID)

	// The mastering write and the successful unlock are kept.
	assert.Equal(t, string(StatusMastered), repo.status(user, "psychology-1"))
	assert.Equal(t, string(StatusAvailable), repo.status(user, "psychology-4"))

	// A later pass picks the failed node up.
	delete(repo.failOn, "psychology-3")
	rec, err := e.Reconcile(ctx, user)
	require.NoError(t, err)
	require.Len(t, rec.Unlocked, 1)
	assert.Equal(t, "psychology-3", rec.Unlocked[0].NodeID)
}

func TestUnlockNode_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, repo, events, clock := newTestEngine(t, catalog.Default())

	first, err := e.UnlockNode(ctx, user, "skill-1")
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, StatusActive, first.Node.Status)
	require.NotNil(t, first.Node.UnlockedAt)
	writes := repo.writes

	clock.t = clock.t.Add(time.Hour)
	second, err := e.UnlockNode(ctx, user, "skill-1")
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, *first.Node.UnlockedAt, *second.Node.UnlockedAt)
	assert.Equal(t, first.Node.UpdatedAt, second.Node.UpdatedAt)
	assert.Equal(t, writes, repo.writes)
	assert.Len(t, events.transitions, 1)
}

func TestUnlockNode_MasteredIsNoop(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _ := newTestEngine(t, catalog.Default())

	_, err := e.CompleteNode(ctx, user, "skill-1")
	require.NoError(t, err)
	writes := repo.writes

	res, err := e.UnlockNode(ctx, user, "skill-1")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, StatusMastered, res.Node.Status)
	assert.Equal(t, writes, repo.writes)
}

func TestUnlockNode_AlwaysOpenNodesAreNoops(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _ := newTestEngine(t, catalog.Default())

	for _, id := range []string{"center", "health-root"} {
		res, err := e.UnlockNode(ctx, user, id)
		require.NoError(t, err)
		assert.False(t, res.Changed, id)
	}
	assert.Zero(t, repo.writes)
}

func TestUnlockNode_LockedNeedsRequirements(t *testing.T) {
	ctx := context.Background()
	e, repo, events, _ := newTestEngine(t, healthCatalog(t))

	_, err := e.UnlockNode(ctx, user, "health-4")
	require.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "health-4")
	assert.Zero(t, repo.writes)
	assert.Empty(t, events.transitions)
	assert.Equal(t, StatusLocked, statusOf(t, e, "health-4"))

	_, err = e.CompleteNode(ctx, user, "health-1")
	require.NoError(t, err)
	writes := repo.writes

	_, err = e.UnlockNode(ctx, user, "health-4")
	require.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, writes, repo.writes)
	assert.Equal(t, StatusLocked, statusOf(t, e, "health-4"))
}

func TestUnlockNode_LockedWithRequirementsMet(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _ := newTestEngine(t, healthCatalog(t))

	// A failed propagation leaves health-4 locked although both
	// requirements are mastered.
	repo.failOn["health-4"] = true
	_, err := e.CompleteNode(ctx, user, "health-1")
	require.NoError(t, err)
	_, err = e.CompleteNode(ctx, user, "health-2")
	require.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, StatusLocked, statusOf(t, e, "health-4"))

	repo.failOn["health-4"] = false
	res, err := e.UnlockNode(ctx, user, "health-4")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, StatusActive, statusOf(t, e, "health-4"))
}

func TestCompleteNode_LockedIsCorrection(t *testing.T) {
	ctx := context.Background()
	e, _, events, _ := newTestEngine(t, healthCatalog(t))

	res, err := e.CompleteNode(ctx, user, "health-4")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, StatusMastered, statusOf(t, e, "health-4"))
	assert.Equal(t, StatusAvailable, statusOf(t, e, "health-1"))

	require.Len(t, events.transitions, 1)
	assert.Equal(t, string(StatusLocked), events.transitions[0].From)
	assert.Equal(t, TriggerComplete, events.transitions[0].Trigger)
}

func TestEngine_Errors(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _ := newTestEngine(t, catalog.Default())

	_, err := e.UnlockNode(ctx, "", "skill-1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = e.CompleteNode(ctx, "", "skill-1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = e.Nodes(ctx, "", nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = e.UnlockNode(ctx, user, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.CompleteNode(ctx, user, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	repo.listErr = errors.New("db down")
	_, err = e.Level(ctx, user)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestEngine_RootsNeverLocked(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _ := newTestEngine(t, catalog.Default())

	// A stray locked row on a root or the center still reads active.
	for _, id := range []string{"center", "skill-root"} {
		require.NoError(t, repo.Upsert(ctx, NodeProgress{
			UserID: user, NodeID: id, Status: StatusLocked,
		}.Record()))
	}

	states, err := e.Nodes(ctx, user, nil)
	require.NoError(t, err)
	for _, s := range states {
		if s.Node.IsAlwaysOpen() {
			assert.NotEqual(t, StatusLocked, s.Status, s.Node.ID)
			assert.NotEqual(t, StatusLocked, s.DisplayStatus, s.Node.ID)
		}
	}

	// Propagation skips them too.
	res, err := e.Reconcile(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, res.Unlocked)
}

func TestEngine_LevelCountsMastered(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := newTestEngine(t, catalog.Default())

	for _, id := range []string{"health-1", "health-2", "skill-1"} {
		_, err := e.CompleteNode(ctx, user, id)
		require.NoError(t, err)
	}
	level, err := e.Level(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, level)

	// Other users are unaffected.
	level, err = e.Level(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, level)
}

func TestEngine_NodesAppliesTaskProjection(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := newTestEngine(t, catalog.Default())

	states, err := e.Nodes(ctx, user, map[string]TaskCounts{
		"skill-1": {Total: 5, Completed: 4},
		"skill-2": {Total: 5, Completed: 1},
	})
	require.NoError(t, err)

	byID := make(map[string]NodeState)
	for _, s := range states {
		byID[s.Node.ID] = s
	}
	assert.Equal(t, StatusAvailable, byID["skill-1"].Status)
	assert.Equal(t, StatusMastered, byID["skill-1"].DisplayStatus)
	assert.Equal(t, StatusActive, byID["skill-2"].DisplayStatus)

	// Display mastery never feeds level or propagation.
	level, err := e.Level(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
}

func TestEngine_ResetReturnsDefaults(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := newTestEngine(t, healthCatalog(t))

	_, err := e.CompleteNode(ctx, user, "health-1")
	require.NoError(t, err)
	_, err = e.CompleteNode(ctx, user, "health-2")
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, statusOf(t, e, "health-4"))

	n, err := e.Reset(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, StatusAvailable, statusOf(t, e, "health-1"))
	assert.Equal(t, StatusLocked, statusOf(t, e, "health-4"))

	_, err = e.Reset(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
