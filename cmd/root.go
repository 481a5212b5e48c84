package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/config"
	"github.com/abhisek/starpath/internal/logging"
	"github.com/abhisek/starpath/internal/store"
)

var (
	cfg       *config.Config
	logger    = zerolog.Nop()
	logCloser = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "starpath",
	Short: "Skill star map driven by your to-do list",
	Long: "Starpath tracks personal growth as a star map of psychology, health and skill nodes.\n" +
		"To-dos are classified onto nodes, and mastering nodes unlocks the ones that depend on them.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCloser()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMap(cmd)
	},
}

// Execute runs the root command, cancelling on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STARPATH_DB env var)")
	rootCmd.PersistentFlags().String("config", config.DefaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().String("user", "", "User whose progress to show (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and the logger once per invocation.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		c.User = u
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		c.Log.Level = l
	}

	l, closer, err := logging.New(c.Log.Level, c.Log.File)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	cfg, logger, logCloser = c, l, closer

	cmd.SetContext(logging.WithUser(cmd.Context(), logger, cfg.User))
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file or STARPATH_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Database.Path != "" {
		return cfg.Database.Path, store.EnsureDir(cfg.Database.Path)
	}
	return store.DefaultDBPath()
}
