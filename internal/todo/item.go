// Package todo manages categorized to-do items and the per-node and
// per-category completion rollups derived from them.
package todo

import (
	"errors"
	"time"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/store"
)

// Sentinel errors.
var (
	ErrNotFound        = errors.New("todo not found")
	ErrEmptyText       = errors.New("todo text is empty")
	ErrUnauthenticated = errors.New("no user")
)

// Item is a single user task.
type Item struct {
	ID          string
	UserID      string
	Text        string
	Completed   bool
	Category    string
	NodeID      string // Empty when not associated with a node
	CreatedAt   time.Time
	CompletedAt *time.Time // Set on false→true, cleared on true→false
}

// Clone returns a copy of it that shares no pointers.
func (it Item) Clone() Item {
	if it.CompletedAt != nil {
		t := *it.CompletedAt
		it.CompletedAt = &t
	}
	return it
}

// Toggled returns it with completion flipped at now.
func (it Item) Toggled(now time.Time) Item {
	it = it.Clone()
	it.Completed = !it.Completed
	if it.Completed {
		it.CompletedAt = &now
	} else {
		it.CompletedAt = nil
	}
	return it
}

// FromRecord converts a store row to an Item.
func FromRecord(r store.TodoRecord) Item {
	return Item{
		ID:          r.ID,
		UserID:      r.UserID,
		Text:        r.Text,
		Completed:   r.Completed,
		Category:    r.Category,
		NodeID:      r.NodeID,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

// Record converts it to a store row.
func (it Item) Record() store.TodoRecord {
	return store.TodoRecord{
		ID:          it.ID,
		UserID:      it.UserID,
		Text:        it.Text,
		Completed:   it.Completed,
		Category:    it.Category,
		NodeID:      it.NodeID,
		CreatedAt:   it.CreatedAt,
		CompletedAt: it.CompletedAt,
	}
}

// Classification is the node and category assigned to new text.
type Classification struct {
	NodeID   string
	Category catalog.Category
}
