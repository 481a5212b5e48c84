package progress

import "github.com/abhisek/starpath/internal/catalog"

const (
	// A node displays as mastered once masteryNum/masteryDen (80%) of its
	// tasks are completed. Integer arithmetic keeps ceil exact.
	masteryNum = 4
	masteryDen = 5

	// MinMasteryTasks is the floor on completed tasks for display mastery.
	MinMasteryTasks = 3

	// NodesPerLevel is how many mastered nodes make one level.
	NodesPerLevel = 3
)

// DefaultStatus is the status of a node that has no persisted record.
// The center and category roots are always open; other nodes are
// available without requirements and locked otherwise.
func DefaultStatus(n catalog.Node) Status {
	if n.IsAlwaysOpen() {
		return StatusActive
	}
	if len(n.Requirements) == 0 {
		return StatusAvailable
	}
	return StatusLocked
}

// EffectiveStatus merges a persisted record with the catalog default.
// A record's status wins outright, except that the center and roots are
// never reported locked.
func EffectiveStatus(n catalog.Node, rec *NodeProgress) Status {
	if rec == nil {
		return DefaultStatus(n)
	}
	if rec.Status == StatusLocked && n.IsAlwaysOpen() {
		return StatusActive
	}
	return rec.Status
}

// MasteryThreshold returns the completed-task count at which a node with
// total tasks displays as mastered.
func MasteryThreshold(total int) int {
	return max(MinMasteryTasks, (total*masteryNum+masteryDen-1)/masteryDen)
}

// DeriveStatusFromTasks projects task completion onto a node's status for
// display. It is advisory and never persisted: the authoritative
// transitions are UnlockNode and CompleteNode.
func DeriveStatusFromTasks(base Status, total, completed int) Status {
	if total <= 0 {
		return base
	}
	if completed >= MasteryThreshold(total) {
		return StatusMastered
	}
	if completed > 0 {
		return StatusActive
	}
	return base
}

// Level returns floor(mastered/NodesPerLevel)+1, never less than 1.
func Level(mastered int) int {
	if mastered < 0 {
		mastered = 0
	}
	return mastered/NodesPerLevel + 1
}

// TaskCounts is the per-node task tally used for display status.
type TaskCounts struct {
	Total     int
	Completed int
}

// NodeState is a catalog node joined with the user's progress.
type NodeState struct {
	Node          catalog.Node
	Record        *NodeProgress // nil when nothing is persisted
	Status        Status        // Authoritative effective status
	DisplayStatus Status        // Status with the task-completion projection applied
}

// Merge joins every catalog node with its record and task counts, in
// catalog display order. counts may be nil.
func Merge(cat *catalog.Catalog, records map[string]*NodeProgress, counts map[string]TaskCounts) []NodeState {
	nodes := cat.ListNodes()
	out := make([]NodeState, 0, len(nodes))
	for _, n := range nodes {
		rec := records[n.ID]
		st := EffectiveStatus(n, rec)
		c := counts[n.ID]
		out = append(out, NodeState{
			Node:          n,
			Record:        rec.Clone(),
			Status:        st,
			DisplayStatus: DeriveStatusFromTasks(st, c.Total, c.Completed),
		})
	}
	return out
}

// MasteredCount counts nodes whose authoritative status is mastered.
func MasteredCount(states []NodeState) int {
	n := 0
	for _, s := range states {
		if s.Status == StatusMastered {
			n++
		}
	}
	return n
}

// masteredSet returns the IDs whose persisted status is mastered.
func masteredSet(records map[string]*NodeProgress) map[string]bool {
	out := make(map[string]bool)
	for id, r := range records {
		if r != nil && r.Status == StatusMastered {
			out[id] = true
		}
	}
	return out
}
