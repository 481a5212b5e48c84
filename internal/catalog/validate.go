package catalog

import (
	"fmt"
	"strings"
)

// validateNodes performs all structural checks on the given node set.
// Returns a combined error describing all problems found, or nil if valid.
func validateNodes(nodes []Node) error {
	var errs []string

	idSet := make(map[string]bool, len(nodes))
	centers := 0
	roots := make(map[Category]int)

	for _, n := range nodes {
		if n.ID == "" {
			errs = append(errs, "node with empty ID")
			continue
		}
		if idSet[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate node ID: %q", n.ID))
		}
		idSet[n.ID] = true

		switch n.Kind {
		case KindCenter:
			centers++
			if len(n.Requirements) > 0 {
				errs = append(errs, fmt.Sprintf("center node %q must not have requirements", n.ID))
			}
		case KindRoot:
			if !n.Category.Valid() {
				errs = append(errs, fmt.Sprintf("root node %q has invalid category %q", n.ID, n.Category))
			}
			roots[n.Category]++
			if len(n.Requirements) > 0 {
				errs = append(errs, fmt.Sprintf("root node %q must not have requirements", n.ID))
			}
		case KindLeaf:
			if !n.Category.Valid() {
				errs = append(errs, fmt.Sprintf("node %q has invalid category %q", n.ID, n.Category))
			}
		default:
			errs = append(errs, fmt.Sprintf("node %q has unknown kind %q", n.ID, n.Kind))
		}
	}

	if centers != 1 {
		errs = append(errs, fmt.Sprintf("expected exactly one center node, found %d", centers))
	}
	for _, cat := range AllCategories() {
		if roots[cat] != 1 {
			errs = append(errs, fmt.Sprintf("category %q must have exactly one root, found %d", cat, roots[cat]))
		}
	}

	// Dangling requirements and connections
	for _, n := range nodes {
		for _, req := range n.Requirements {
			if req == n.ID {
				errs = append(errs, fmt.Sprintf("node %q requires itself", n.ID))
				continue
			}
			if !idSet[req] {
				errs = append(errs, fmt.Sprintf("node %q references nonexistent requirement %q", n.ID, req))
			}
		}
		for _, conn := range n.Connections {
			if !idSet[conn] {
				errs = append(errs, fmt.Sprintf("node %q connects to nonexistent node %q", n.ID, conn))
			}
		}
	}

	// Cycles via Kahn's algorithm
	inDegree := make(map[string]int, len(nodes))
	adj := make(map[string][]string)
	for _, n := range nodes {
		inDegree[n.ID] = 0
	}
	for _, n := range nodes {
		for _, req := range n.Requirements {
			if !idSet[req] || req == n.ID {
				continue
			}
			inDegree[n.ID]++
			adj[req] = append(adj[req], n.ID)
		}
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range adj[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if visited < len(idSet) {
		var cycle []string
		seen := make(map[string]bool)
		for _, n := range nodes {
			if inDegree[n.ID] > 0 && !seen[n.ID] {
				seen[n.ID] = true
				cycle = append(cycle, n.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(cycle, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("node catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
