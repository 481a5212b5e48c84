package progress

import (
	"time"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/store"
)

// NodeProgress is the persisted progress of one user on one node.
type NodeProgress struct {
	UserID        string
	NodeID        string
	Category      catalog.Category
	Status        Status
	UnlockedAt    *time.Time // First transition into available or active
	MasteredAt    *time.Time // First transition into mastered
	ProgressScore int
	UpdatedAt     time.Time
}

// Clone returns a deep copy of p.
func (p *NodeProgress) Clone() *NodeProgress {
	if p == nil {
		return nil
	}
	c := *p
	if p.UnlockedAt != nil {
		t := *p.UnlockedAt
		c.UnlockedAt = &t
	}
	if p.MasteredAt != nil {
		t := *p.MasteredAt
		c.MasteredAt = &t
	}
	return &c
}

// FromRecord converts a store row to NodeProgress. Rows with an unknown
// status are read as locked so a bad row can never open a node.
func FromRecord(r store.ProgressRecord) NodeProgress {
	st, err := ParseStatus(r.Status)
	if err != nil {
		st = StatusLocked
	}
	return NodeProgress{
		UserID:        r.UserID,
		NodeID:        r.NodeID,
		Category:      catalog.Category(r.Category),
		Status:        st,
		UnlockedAt:    r.UnlockedAt,
		MasteredAt:    r.MasteredAt,
		ProgressScore: r.ProgressScore,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Record converts p to a store row.
func (p NodeProgress) Record() store.ProgressRecord {
	return store.ProgressRecord{
		UserID:        p.UserID,
		NodeID:        p.NodeID,
		Category:      string(p.Category),
		Status:        string(p.Status),
		UnlockedAt:    p.UnlockedAt,
		MasteredAt:    p.MasteredAt,
		ProgressScore: p.ProgressScore,
		UpdatedAt:     p.UpdatedAt,
	}
}
