package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/store"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and sync the node catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a catalog YAML file (default: the embedded catalog)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := catalog.DefaultFile()
		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read catalog file: %w", err)
			}
			if f, err = catalog.ParseFile(data); err != nil {
				return err
			}
		}

		c, err := f.Catalog()
		if err != nil {
			return err
		}
		fmt.Printf("Catalog %s is valid: %d active nodes.\n", c.Version(), len(c.ListNodes()))
		return nil
	},
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Persist a newer catalog and run pending unlocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file != "" {
			cfg.Catalog.Path = file
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		before, err := s.NodeDefinitionRepo().Version(cmd.Context())
		s.Close()
		if err != nil {
			return fmt.Errorf("read catalog version: %w", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.synced {
			fmt.Printf("Catalog %s is up to date.\n", a.catalog.Version())
		} else {
			fmt.Printf("Catalog updated %s → %s.\n", orNone(before), a.catalog.Version())
		}

		res, err := a.board.Reconcile(cmd.Context())
		if res != nil {
			for _, p := range res.Unlocked {
				fmt.Printf("  unlocked %s\n", p.NodeID)
			}
		}
		return err
	},
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func init() {
	catalogSyncCmd.Flags().String("file", "", "Catalog YAML to sync instead of the configured one")

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogSyncCmd)
}
