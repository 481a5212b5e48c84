package catalog

import (
	_ "embed"
	"fmt"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the on-disk YAML shape of a node catalog.
type File struct {
	Version  string              `yaml:"version"`
	Synonyms map[string]Category `yaml:"synonyms"`
	Nodes    []Definition        `yaml:"nodes"`
}

// Definition is a single node row as stored in YAML or in the
// node_definitions table.
type Definition struct {
	ID           string        `yaml:"id"`
	Category     Category      `yaml:"category"`
	Kind         Kind          `yaml:"kind"`
	Name         LocalizedText `yaml:"name"`
	Description  LocalizedText `yaml:"description"`
	Position     Position      `yaml:"position"`
	Connections  []string      `yaml:"connections"`
	Requirements []string      `yaml:"requirements"`
	Keywords     []string      `yaml:"keywords"`
	DisplayOrder int           `yaml:"order"`
	Active       *bool         `yaml:"active"`
}

// Node converts a definition to a Node. A missing active flag means active.
func (d Definition) Node() Node {
	kind := d.Kind
	if kind == "" {
		kind = KindLeaf
	}
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	return Node{
		ID:           d.ID,
		Category:     d.Category,
		Kind:         kind,
		Name:         d.Name,
		Description:  d.Description,
		Position:     d.Position,
		Connections:  d.Connections,
		Requirements: d.Requirements,
		Keywords:     d.Keywords,
		DisplayOrder: d.DisplayOrder,
		Active:       active,
	}
}

// DefinitionFromNode is the inverse of Definition.Node.
func DefinitionFromNode(n Node) Definition {
	active := n.Active
	return Definition{
		ID:           n.ID,
		Category:     n.Category,
		Kind:         n.Kind,
		Name:         n.Name,
		Description:  n.Description,
		Position:     n.Position,
		Connections:  n.Connections,
		Requirements: n.Requirements,
		Keywords:     n.Keywords,
		DisplayOrder: n.DisplayOrder,
		Active:       &active,
	}
}

// ParseFile decodes catalog YAML without validating the graph.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if f.Version != "" && !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("catalog version %q is not a valid semantic version", f.Version)
	}
	return &f, nil
}

// LoadYAML parses and validates a catalog from YAML.
func LoadYAML(data []byte) (*Catalog, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return f.Catalog()
}

// Catalog builds and validates a catalog from the file's definitions.
func (f *File) Catalog() (*Catalog, error) {
	nodes := make([]Node, len(f.Nodes))
	for i, d := range f.Nodes {
		nodes[i] = d.Node()
	}
	return New(f.Version, nodes, f.Synonyms)
}

// DefaultFile returns the embedded catalog definition.
func DefaultFile() *File {
	f, err := ParseFile(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return f
}

// Default returns the embedded catalog. It panics if the embedded YAML is
// invalid, which the package tests guard against.
func Default() *Catalog {
	c, err := LoadYAML(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// NewerVersion reports whether candidate is a strictly newer semantic
// version than current. An empty current is older than any valid version.
func NewerVersion(candidate, current string) bool {
	if !semver.IsValid(candidate) {
		return false
	}
	if current == "" || !semver.IsValid(current) {
		return true
	}
	return semver.Compare(candidate, current) > 0
}
