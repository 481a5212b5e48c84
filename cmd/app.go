package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/board"
	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/classify"
	"github.com/abhisek/starpath/internal/config"
	"github.com/abhisek/starpath/internal/llm"
	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/store"
	"github.com/abhisek/starpath/internal/store/pgstore"
	"github.com/abhisek/starpath/internal/todo"
)

// app is the dependency graph shared by the data commands. The SQLite
// store always holds the catalog and event log; progress and to-dos move
// to Postgres when the postgres driver is configured.
type app struct {
	store   *store.Store
	pg      *pgstore.PgStore
	catalog *catalog.Catalog
	engine  *progress.Engine
	todos   *todo.Service
	board   *board.Board
	synced  bool
}

// openApp opens the stores, syncs the catalog, and loads the user's board.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	log := logger

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{store: s}

	file, err := catalogFile(cfg.Catalog.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.synced, err = catalog.Sync(ctx, s.NodeDefinitionRepo(), file)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("sync catalog: %w", err)
	}
	if a.synced {
		log.Info().Str("version", file.Version).Msg("node catalog updated")
	}
	a.catalog, err = catalog.Load(ctx, s.NodeDefinitionRepo(), file.Synonyms)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if off := a.catalog.Disabled(); len(off) > 0 {
		log.Warn().Strs("nodes", off).Msg("nodes hidden: a requirement is inactive")
	}

	progressRepo, todoRepo := s.ProgressRepo(), s.TodoRepo()
	if cfg.Database.Driver == config.DriverPostgres {
		a.pg, err = pgstore.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		progressRepo, todoRepo = a.pg.ProgressRepo(), a.pg.TodoRepo()
	}

	a.engine = progress.NewEngine(a.catalog, progressRepo,
		progress.WithEventRepo(s.EventRepo()),
		progress.WithLogger(log))

	classifierOpts := []classify.Option{
		classify.WithLogger(log),
		classify.WithTimeout(cfg.LLM.Timeout),
	}
	if p := newProvider(ctx, s.EventRepo(), log); p != nil {
		classifierOpts = append(classifierOpts, classify.WithProvider(p, classify.DefaultLLMConfig()))
	}
	a.todos = todo.NewService(todoRepo, a.catalog,
		todo.WithClassifier(classify.New(a.catalog, classifierOpts...)),
		todo.WithDefaultCategory(cfg.DefaultCategory()),
		todo.WithLogger(log))

	a.board = board.New(cfg.User, a.engine, a.todos, board.WithLogger(log))
	if err := a.board.Refresh(ctx); err != nil {
		a.Close()
		return nil, err
	}

	// A newer catalog can make nodes due that no completion triggered.
	if a.synced {
		if _, err := a.board.Reconcile(ctx); err != nil {
			log.Warn().Err(err).Msg("reconcile after catalog update failed")
		}
	}
	return a, nil
}

// Close releases the stores.
func (a *app) Close() {
	if a.pg != nil {
		a.pg.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// catalogFile reads the configured catalog YAML, or the embedded one.
func catalogFile(path string) (*catalog.File, error) {
	if path == "" {
		return catalog.DefaultFile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return catalog.ParseFile(data)
}

// newProvider returns the LLM provider for the classifier fallback, or nil
// when it is disabled or not configured.
func newProvider(ctx context.Context, events store.EventRepo, log zerolog.Logger) llm.Provider {
	if !cfg.LLM.Enabled {
		return nil
	}
	pc := cfg.ProviderConfig()
	if err := pc.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			log.Warn().Err(err).Msg("LLM provider not configured; classifier uses keywords only")
			return nil
		}
		discovered.Timeout = pc.Timeout
		pc = discovered
	}
	p, err := llm.NewProvider(ctx, pc, events, log)
	if err != nil {
		log.Warn().Err(err).Msg("LLM provider unavailable; classifier uses keywords only")
		return nil
	}
	return p
}
