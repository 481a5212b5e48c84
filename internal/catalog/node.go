package catalog

// Category is one of the closed set of star-map categories.
type Category string

const (
	CategoryPsychology Category = "psychology"
	CategoryHealth     Category = "health"
	CategorySkill      Category = "skill"

	// CategoryCenter is carried only by the center node.
	CategoryCenter Category = "center"
)

// AllCategories returns the user-facing categories in display order.
// The center pseudo-category is not included.
func AllCategories() []Category {
	return []Category{
		CategoryPsychology,
		CategoryHealth,
		CategorySkill,
	}
}

// Valid reports whether c is a user-facing category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPsychology, CategoryHealth, CategorySkill:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable name for a category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryPsychology:
		return "Psychology"
	case CategoryHealth:
		return "Health"
	case CategorySkill:
		return "Skill"
	case CategoryCenter:
		return "Center"
	default:
		return string(c)
	}
}

// Kind is a node's structural role in the map.
type Kind string

const (
	KindCenter Kind = "center" // The single global hub, no requirements
	KindRoot   Kind = "root"   // One per category, groups the category's leaves
	KindLeaf   Kind = "leaf"   // Everything else
)

// LocalizedText is a presentation string in the two shipped locales.
type LocalizedText struct {
	EN string `yaml:"en" json:"en"`
	ZH string `yaml:"zh" json:"zh"`
}

// String returns the English text, falling back to Chinese.
func (t LocalizedText) String() string {
	if t.EN != "" {
		return t.EN
	}
	return t.ZH
}

// Position is the rendering coordinate of a node. Core logic ignores it.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Node is a single skill/competency unit in the star map.
type Node struct {
	ID           string
	Category     Category
	Kind         Kind
	Name         LocalizedText
	Description  LocalizedText
	Position     Position
	Connections  []string
	Requirements []string
	Keywords     []string
	DisplayOrder int
	Active       bool
}

// IsAlwaysOpen reports whether the node is the center or a category root.
// Such nodes are never locked.
func (n Node) IsAlwaysOpen() bool {
	return n.Kind == KindCenter || n.Kind == KindRoot
}
