package catalog

import (
	"context"
	"fmt"

	"github.com/abhisek/starpath/internal/store"
)

// Sync replaces the persisted catalog with f when f's version is newer
// than the stored one. The file is validated before anything is written.
// It reports whether the table was replaced.
func Sync(ctx context.Context, repo store.NodeDefinitionRepo, f *File) (bool, error) {
	current, err := repo.Version(ctx)
	if err != nil {
		return false, err
	}
	if !NewerVersion(f.Version, current) {
		return false, nil
	}
	if _, err := f.Catalog(); err != nil {
		return false, err
	}

	defs := make([]store.NodeDefinitionRecord, len(f.Nodes))
	for i, d := range f.Nodes {
		defs[i] = d.Record()
	}
	if err := repo.Replace(ctx, f.Version, defs); err != nil {
		return false, fmt.Errorf("replace catalog: %w", err)
	}
	return true, nil
}

// Load builds a catalog from the persisted definitions. Synonyms are not
// stored and are taken from the caller.
func Load(ctx context.Context, repo store.NodeDefinitionRepo, synonyms map[string]Category) (*Catalog, error) {
	version, err := repo.Version(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := repo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list node definitions: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("node catalog is empty: %w", ErrNotFound)
	}
	nodes := make([]Node, len(rows))
	for i, r := range rows {
		nodes[i] = DefinitionFromRecord(r).Node()
	}
	return New(version, nodes, synonyms)
}

// Record converts a definition to a node_definitions row.
func (d Definition) Record() store.NodeDefinitionRecord {
	n := d.Node()
	return store.NodeDefinitionRecord{
		ID:            n.ID,
		NameEN:        n.Name.EN,
		NameZH:        n.Name.ZH,
		DescriptionEN: n.Description.EN,
		DescriptionZH: n.Description.ZH,
		Category:      string(n.Category),
		Kind:          string(n.Kind),
		PosX:          n.Position.X,
		PosY:          n.Position.Y,
		Connections:   n.Connections,
		Requirements:  n.Requirements,
		Keywords:      n.Keywords,
		DisplayOrder:  n.DisplayOrder,
		Active:        n.Active,
	}
}

// DefinitionFromRecord is the inverse of Definition.Record.
func DefinitionFromRecord(r store.NodeDefinitionRecord) Definition {
	active := r.Active
	return Definition{
		ID:           r.ID,
		Category:     Category(r.Category),
		Kind:         Kind(r.Kind),
		Name:         LocalizedText{EN: r.NameEN, ZH: r.NameZH},
		Description:  LocalizedText{EN: r.DescriptionEN, ZH: r.DescriptionZH},
		Position:     Position{X: r.PosX, Y: r.PosY},
		Connections:  r.Connections,
		Requirements: r.Requirements,
		Keywords:     r.Keywords,
		DisplayOrder: r.DisplayOrder,
		Active:       &active,
	}
}
