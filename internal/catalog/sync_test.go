package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/starpath/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSync_SeedsAndLoads(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).NodeDefinitionRepo()
	f := DefaultFile()

	replaced, err := Sync(ctx, repo, f)
	require.NoError(t, err)
	assert.True(t, replaced)

	c, err := Load(ctx, repo, f.Synonyms)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", c.Version())
	assert.Len(t, c.ListNodes(), 16)

	n, err := c.GetNode("health-4")
	require.NoError(t, err)
	assert.Equal(t, []string{"health-1", "health-2"}, n.Requirements)
	assert.Equal(t, "Peak Energy", n.Name.EN)

	cat, ok := c.ResolveCategory("Fitness")
	assert.True(t, ok)
	assert.Equal(t, CategoryHealth, cat)
}

func TestSync_SkipsSameOrOlderVersion(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).NodeDefinitionRepo()

	_, err := Sync(ctx, repo, DefaultFile())
	require.NoError(t, err)

	again, err := Sync(ctx, repo, DefaultFile())
	require.NoError(t, err)
	assert.False(t, again)

	older := DefaultFile()
	older.Version = "v1.0.0"
	older.Nodes = older.Nodes[:1]
	replaced, err := Sync(ctx, repo, older)
	require.NoError(t, err)
	assert.False(t, replaced)

	v, err := repo.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", v)
}

func TestSync_RejectsInvalidCatalog(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).NodeDefinitionRepo()

	bad := DefaultFile()
	bad.Version = "v9.0.0"
	bad.Nodes = bad.Nodes[1:] // drops the center

	replaced, err := Sync(ctx, repo, bad)
	require.Error(t, err)
	assert.False(t, replaced)

	v, err := repo.Version(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSync_InactiveDefinitionsExcludedOnLoad(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).NodeDefinitionRepo()

	f := DefaultFile()
	inactive := false
	for i := range f.Nodes {
		if f.Nodes[i].ID == "skill-4" {
			f.Nodes[i].Active = &inactive
		}
	}
	_, err := Sync(ctx, repo, f)
	require.NoError(t, err)

	c, err := Load(ctx, repo, f.Synonyms)
	require.NoError(t, err)
	assert.False(t, c.Has("skill-4"))
	assert.Len(t, c.ListNodes(), 15)
}

func TestLoad_InactiveRequirementDisablesDependents(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).NodeDefinitionRepo()

	f := DefaultFile()
	inactive := false
	for i := range f.Nodes {
		if f.Nodes[i].ID == "health-1" {
			f.Nodes[i].Active = &inactive
		}
	}
	_, err := Sync(ctx, repo, f)
	require.NoError(t, err)

	c, err := Load(ctx, repo, f.Synonyms)
	require.NoError(t, err)
	assert.Equal(t, []string{"health-3", "health-4"}, c.Disabled())
	assert.True(t, c.Has("health-2"))
	assert.Len(t, c.ListNodes(), 13)
}

func TestLoad_EmptyTable(t *testing.T) {
	_, err := Load(context.Background(), openStore(t).NodeDefinitionRepo(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
