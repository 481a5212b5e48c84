package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/store"
)

// Classifier assigns a node and category to new task text. hint is the
// category the user picked, or "" when none resolved.
type Classifier interface {
	Classify(ctx context.Context, text string, hint catalog.Category) (Classification, error)
}

// Service wraps store.TodoRepo with classification on add and
// sentinel-error mapping.
type Service struct {
	repo            store.TodoRepo
	catalog         *catalog.Catalog
	classifier      Classifier
	defaultCategory catalog.Category
	log             zerolog.Logger
	now             func() time.Time
	newID           func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClassifier sets the classifier used by Add.
func WithClassifier(c Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithDefaultCategory sets the category used when neither the user nor
// the classifier supplies one.
func WithDefaultCategory(c catalog.Category) Option {
	return func(s *Service) { s.defaultCategory = c }
}

// WithLogger sets the service's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log.With().Str("component", "todo-service").Logger() }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(repo store.TodoRepo, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		catalog:         cat,
		defaultCategory: catalog.CategorySkill,
		log:             zerolog.Nop(),
		now:             time.Now,
		newID:           func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the service's node catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// List returns the user's items in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	out := make([]Item, len(rows))
	for i, r := range rows {
		out[i] = FromRecord(r)
	}
	return out, nil
}

// Classify resolves the node and category for new text. It never fails:
// classifier errors fall back to Fallback.
func (s *Service) Classify(ctx context.Context, text, category string) Classification {
	hint := s.hint(category)
	if s.classifier == nil {
		return s.Fallback(hint)
	}

	c, err := s.classifier.Classify(ctx, text, hint)
	if err != nil {
		s.log.Warn().Err(err).Str("category", string(hint)).Msg("classification unavailable, using default")
		return s.Fallback(hint)
	}
	return s.normalize(c, hint)
}

func (s *Service) hint(category string) catalog.Category {
	hint, _ := s.catalog.ResolveCategory(category)
	if !hint.Valid() {
		return ""
	}
	return hint
}

// Fallback is the classification used when none is available: the root
// of hint, or of the default category when hint is empty.
func (s *Service) Fallback(hint catalog.Category) Classification {
	cat := hint
	if cat == "" {
		cat = s.defaultCategory
	}
	c := Classification{Category: cat}
	if root, ok := s.catalog.Root(cat); ok {
		c.NodeID = root.ID
	}
	return c
}

// normalize drops a node outside the catalog and keeps the category in
// line with the node.
func (s *Service) normalize(c Classification, hint catalog.Category) Classification {
	if c.NodeID != "" {
		n, err := s.catalog.GetNode(c.NodeID)
		if err != nil {
			s.log.Warn().Str("node", c.NodeID).Msg("classifier returned unknown node")
			return s.Fallback(hint)
		}
		if n.Category.Valid() {
			c.Category = n.Category
		}
	}
	if !c.Category.Valid() {
		return s.Fallback(hint)
	}
	return c
}

// Add classifies text once and stores a new item. Classification
// failures never block the add.
func (s *Service) Add(ctx context.Context, userID, text, category string) (Item, error) {
	it, err := s.NewItem(ctx, userID, text, category)
	if err != nil {
		return Item{}, err
	}
	return s.AddItem(ctx, it)
}

// NewItem validates and classifies text into an unsaved item with a
// fresh ID.
func (s *Service) NewItem(ctx context.Context, userID, text, category string) (Item, error) {
	it, err := s.Draft(userID, text, category)
	if err != nil {
		return Item{}, err
	}
	return s.Place(ctx, it, category), nil
}

// Draft validates text into an unsaved item with a fresh ID, placed at
// the fallback node for category. It does not call the classifier.
func (s *Service) Draft(userID, text, category string) (Item, error) {
	if userID == "" {
		return Item{}, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, ErrEmptyText
	}

	c := s.Fallback(s.hint(category))
	return Item{
		ID:        s.newID(),
		UserID:    userID,
		Text:      text,
		Category:  string(c.Category),
		NodeID:    c.NodeID,
		CreatedAt: s.now(),
	}, nil
}

// Place classifies a drafted item.
func (s *Service) Place(ctx context.Context, it Item, category string) Item {
	c := s.Classify(ctx, it.Text, category)
	it.Category = string(c.Category)
	it.NodeID = c.NodeID
	return it
}

// AddItem stores an item built by NewItem.
func (s *Service) AddItem(ctx context.Context, it Item) (Item, error) {
	if it.UserID == "" {
		return Item{}, ErrUnauthenticated
	}
	rec, err := s.repo.Add(ctx, it.Record())
	if err != nil {
		return Item{}, fmt.Errorf("add todo: %w", err)
	}
	s.log.Debug().Str("id", rec.ID).Str("node", rec.NodeID).Msg("todo added")
	return FromRecord(rec), nil
}

// Toggle flips an item's completion.
func (s *Service) Toggle(ctx context.Context, userID, id string) (Item, error) {
	if userID == "" {
		return Item{}, ErrUnauthenticated
	}
	rec, err := s.repo.Toggle(ctx, userID, id, s.now())
	if err != nil {
		return Item{}, mapErr("toggle", id, err)
	}
	return FromRecord(rec), nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return mapErr("delete", id, err)
	}
	return nil
}

func mapErr(op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return fmt.Errorf("%s todo %s: %w", op, id, err)
}
