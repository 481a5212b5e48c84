package catalog

import (
	"strings"
	"testing"
)

// skeleton returns the minimal valid node set: center plus one root per category.
func skeleton() []Node {
	return []Node{
		{ID: "center", Kind: KindCenter, Category: CategoryCenter, Active: true},
		{ID: "psychology-root", Kind: KindRoot, Category: CategoryPsychology, Active: true},
		{ID: "health-root", Kind: KindRoot, Category: CategoryHealth, Active: true},
		{ID: "skill-root", Kind: KindRoot, Category: CategorySkill, Active: true},
	}
}

func leaf(id string, cat Category, reqs ...string) Node {
	return Node{ID: id, Kind: KindLeaf, Category: cat, Requirements: reqs, Active: true}
}

func TestValidateNodes_SkeletonPasses(t *testing.T) {
	if err := validateNodes(skeleton()); err != nil {
		t.Fatalf("skeleton validation failed: %v", err)
	}
}

func TestValidateNodes_DetectsCycle(t *testing.T) {
	nodes := append(skeleton(),
		leaf("a", CategoryHealth, "b"),
		leaf("b", CategoryHealth, "a"),
	)
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error should mention cycle, got: %v", err)
	}
}

func TestValidateNodes_DetectsSelfRequirement(t *testing.T) {
	nodes := append(skeleton(), leaf("a", CategoryHealth, "a"))
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for self requirement, got nil")
	}
	if !strings.Contains(err.Error(), "requires itself") {
		t.Errorf("error should mention self requirement, got: %v", err)
	}
}

func TestValidateNodes_DetectsDanglingRequirement(t *testing.T) {
	nodes := append(skeleton(), leaf("a", CategoryHealth, "nonexistent"))
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for dangling requirement, got nil")
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error should mention the missing ID, got: %v", err)
	}
}

func TestValidateNodes_DetectsDanglingConnection(t *testing.T) {
	nodes := skeleton()
	nodes[0].Connections = []string{"ghost"}
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for dangling connection, got nil")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should mention the missing ID, got: %v", err)
	}
}

func TestValidateNodes_DetectsDuplicateID(t *testing.T) {
	nodes := append(skeleton(), leaf("a", CategoryHealth), leaf("a", CategoryHealth))
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for duplicate ID, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestValidateNodes_RequiresCenter(t *testing.T) {
	err := validateNodes(skeleton()[1:])
	if err == nil {
		t.Fatal("expected error for missing center, got nil")
	}
	if !strings.Contains(err.Error(), "center") {
		t.Errorf("error should mention center, got: %v", err)
	}
}

func TestValidateNodes_RequiresRootPerCategory(t *testing.T) {
	nodes := skeleton()[:3] // drop skill-root
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for missing root, got nil")
	}
	if !strings.Contains(err.Error(), `"skill"`) {
		t.Errorf("error should mention the skill category, got: %v", err)
	}
}

func TestValidateNodes_RootWithRequirements(t *testing.T) {
	nodes := append(skeleton(), leaf("a", CategoryHealth))
	nodes[2].Requirements = []string{"a"}
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for root with requirements, got nil")
	}
}

func TestValidateNodes_InvalidCategory(t *testing.T) {
	nodes := append(skeleton(), leaf("a", Category("cooking")))
	err := validateNodes(nodes)
	if err == nil {
		t.Fatal("expected error for invalid category, got nil")
	}
	if !strings.Contains(err.Error(), "cooking") {
		t.Errorf("error should mention the category, got: %v", err)
	}
}
