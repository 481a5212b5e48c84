package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrNotFound is returned when a node ID is not in the catalog.
var ErrNotFound = errors.New("node not found")

// Catalog holds the node DAG with precomputed indices. It is immutable
// after construction and safe for concurrent reads.
type Catalog struct {
	version    string
	nodes      []Node
	byID       map[string]*Node
	byCategory map[Category][]Node
	roots      map[Category]Node
	center     Node
	dependents map[string][]string
	topoOrder  []Node
	topoIndex  map[string]int
	synonyms   map[string]Category
	disabled   []string
}

// New validates nodes and builds a Catalog. Inactive nodes are dropped
// before validation along with their connections. A node that requires an
// inactive node can never unlock, so it is dropped too and reported by
// Disabled.
func New(version string, nodes []Node, synonyms map[string]Category) (*Catalog, error) {
	off := make(map[string]bool)
	for _, n := range nodes {
		if !n.Active {
			off[n.ID] = true
		}
	}
	var disabled []string
	for changed := len(off) > 0; changed; {
		changed = false
		for _, n := range nodes {
			if off[n.ID] {
				continue
			}
			if slices.ContainsFunc(n.Requirements, func(id string) bool { return off[id] }) {
				off[n.ID] = true
				disabled = append(disabled, n.ID)
				changed = true
			}
		}
	}

	active := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if off[n.ID] {
			continue
		}
		if len(off) > 0 {
			n.Connections = slices.DeleteFunc(slices.Clone(n.Connections), func(id string) bool {
				return off[id]
			})
		}
		active = append(active, n)
	}
	if err := validateNodes(active); err != nil {
		return nil, err
	}
	c := build(version, active, synonyms)
	slices.Sort(disabled)
	c.disabled = disabled
	return c, nil
}

// Disabled lists active nodes that were dropped because a requirement,
// directly or transitively, is inactive.
func (c *Catalog) Disabled() []string {
	return slices.Clone(c.disabled)
}

// build constructs all indices including topological order (Kahn's algorithm).
func build(version string, nodes []Node, synonyms map[string]Category) *Catalog {
	sorted := slices.Clone(nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DisplayOrder != sorted[j].DisplayOrder {
			return sorted[i].DisplayOrder < sorted[j].DisplayOrder
		}
		return sorted[i].ID < sorted[j].ID
	})

	c := &Catalog{
		version:    version,
		nodes:      sorted,
		byID:       make(map[string]*Node, len(sorted)),
		byCategory: make(map[Category][]Node),
		roots:      make(map[Category]Node),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(sorted)),
		synonyms:   make(map[string]Category, len(synonyms)),
	}

	for i := range c.nodes {
		n := &c.nodes[i]
		c.byID[n.ID] = n
		c.byCategory[n.Category] = append(c.byCategory[n.Category], *n)
		switch n.Kind {
		case KindCenter:
			c.center = *n
		case KindRoot:
			c.roots[n.Category] = *n
		}
		for _, req := range n.Requirements {
			c.dependents[req] = append(c.dependents[req], n.ID)
		}
	}

	inDegree := make(map[string]int, len(c.nodes))
	for _, n := range c.nodes {
		inDegree[n.ID] = len(n.Requirements)
	}

	var queue []string
	for _, n := range c.nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		c.topoIndex[id] = len(c.topoOrder)
		c.topoOrder = append(c.topoOrder, *c.byID[id])

		deps := slices.Clone(c.dependents[id])
		sort.Strings(deps)
		for _, dep := range deps {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	for _, cat := range AllCategories() {
		c.synonyms[string(cat)] = cat
	}
	for word, cat := range synonyms {
		c.synonyms[normalizeCategory(word)] = cat
	}

	return c
}

// Version returns the catalog's semantic version string.
func (c *Catalog) Version() string {
	return c.version
}

// ListNodes returns all nodes ordered by display order, then ID.
func (c *Catalog) ListNodes() []Node {
	return slices.Clone(c.nodes)
}

// GetNode returns a node by ID.
func (c *Catalog) GetNode(id string) (Node, error) {
	n, ok := c.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return *n, nil
}

// Has reports whether id is a node in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Center returns the global center node.
func (c *Catalog) Center() Node {
	return c.center
}

// Root returns the root node of a category.
func (c *Catalog) Root(cat Category) (Node, bool) {
	n, ok := c.roots[cat]
	return n, ok
}

// Roots returns the category roots in category display order.
func (c *Catalog) Roots() []Node {
	out := make([]Node, 0, len(c.roots))
	for _, cat := range AllCategories() {
		if n, ok := c.roots[cat]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ByCategory returns all nodes of a category in display order.
func (c *Catalog) ByCategory(cat Category) []Node {
	return slices.Clone(c.byCategory[cat])
}

// Requirements returns the direct requirement nodes for a node ID.
func (c *Catalog) Requirements(id string) []Node {
	n, ok := c.byID[id]
	if !ok {
		return nil
	}
	out := make([]Node, 0, len(n.Requirements))
	for _, req := range n.Requirements {
		if r, ok := c.byID[req]; ok {
			out = append(out, *r)
		}
	}
	return out
}

// Dependents returns nodes that directly require the given node ID.
func (c *Catalog) Dependents(id string) []Node {
	ids := c.dependents[id]
	out := make([]Node, 0, len(ids))
	for _, dep := range ids {
		if n, ok := c.byID[dep]; ok {
			out = append(out, *n)
		}
	}
	return out
}

// RequirementsMet reports whether every requirement of id is in mastered.
// Nodes without requirements always report true; unknown IDs report false.
func (c *Catalog) RequirementsMet(id string, mastered map[string]bool) bool {
	n, ok := c.byID[id]
	if !ok {
		return false
	}
	for _, req := range n.Requirements {
		if !mastered[req] {
			return false
		}
	}
	return true
}

// TopologicalOrder returns all nodes with every node after its requirements.
func (c *Catalog) TopologicalOrder() []Node {
	return slices.Clone(c.topoOrder)
}

// ResolveCategory maps a free-form category string (including declared
// synonyms) to a catalog category.
func (c *Catalog) ResolveCategory(s string) (Category, bool) {
	cat, ok := c.synonyms[normalizeCategory(s)]
	return cat, ok
}

// CategoryAliases returns every string that resolves to cat, sorted.
func (c *Catalog) CategoryAliases(cat Category) []string {
	var out []string
	for word, target := range c.synonyms {
		if target == cat {
			out = append(out, word)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
