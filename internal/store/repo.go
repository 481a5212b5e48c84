package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ProgressRecord is one row of per-user node progress.
type ProgressRecord struct {
	UserID        string
	NodeID        string
	Category      string
	Status        string
	UnlockedAt    *time.Time
	MasteredAt    *time.Time
	ProgressScore int
	UpdatedAt     time.Time
}

// ProgressRepo persists node progress, one row per (user, node).
type ProgressRepo interface {
	// List returns every progress row for a user.
	List(ctx context.Context, userID string) ([]ProgressRecord, error)

	// Get returns the row for (user, node), or nil if none exists.
	Get(ctx context.Context, userID, nodeID string) (*ProgressRecord, error)

	// Upsert inserts or replaces the row keyed by (user, node).
	Upsert(ctx context.Context, rec ProgressRecord) error

	// DeleteUser removes every row for a user and reports how many.
	DeleteUser(ctx context.Context, userID string) (int, error)
}

// TodoRecord is one row of a user's to-do list.
type TodoRecord struct {
	ID          string
	UserID      string
	Text        string
	Completed   bool
	Category    string
	NodeID      string // empty when unassociated
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// TodoRepo persists to-do items.
type TodoRepo interface {
	// List returns a user's items ordered by creation time.
	List(ctx context.Context, userID string) ([]TodoRecord, error)

	// Get returns a single item or ErrNotFound.
	Get(ctx context.Context, userID, id string) (TodoRecord, error)

	// Add inserts a new item and returns it as stored.
	Add(ctx context.Context, rec TodoRecord) (TodoRecord, error)

	// Toggle flips completion atomically, setting CompletedAt to now on
	// false→true and clearing it on true→false. Returns ErrNotFound for
	// unknown items.
	Toggle(ctx context.Context, userID, id string, now time.Time) (TodoRecord, error)

	// Delete removes an item. Returns ErrNotFound for unknown items.
	Delete(ctx context.Context, userID, id string) error
}

// NodeDefinitionRecord is one row of the node catalog table.
type NodeDefinitionRecord struct {
	ID            string
	NameEN        string
	NameZH        string
	DescriptionEN string
	DescriptionZH string
	Category      string
	Kind          string
	PosX          float64
	PosY          float64
	Connections   []string
	Requirements  []string
	Keywords      []string
	DisplayOrder  int
	Active        bool
}

// NodeDefinitionRepo is the persisted source of the node catalog.
type NodeDefinitionRepo interface {
	// List returns all definitions ordered by display order, then ID.
	// When activeOnly is set, inactive rows are skipped.
	List(ctx context.Context, activeOnly bool) ([]NodeDefinitionRecord, error)

	// Replace atomically swaps the whole catalog for defs and records version.
	Replace(ctx context.Context, version string, defs []NodeDefinitionRecord) error

	// Version returns the recorded catalog version, or "" if never seeded.
	Version(ctx context.Context) (string, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats is the LLM usage of one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMModelUsage is the LLM usage of one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// TransitionEventData records a persisted node status change.
type TransitionEventData struct {
	UserID  string
	NodeID  string
	From    string
	To      string
	Trigger string
}

// TransitionEvent is a stored node transition event.
type TransitionEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	TransitionEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single LLM event by ID.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates LLM calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates LLM calls per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	// AppendTransition records a node status transition.
	AppendTransition(ctx context.Context, data TransitionEventData) error

	// QueryTransitions returns a user's transition events, newest first.
	QueryTransitions(ctx context.Context, userID string, opts QueryOpts) ([]TransitionEvent, error)
}
