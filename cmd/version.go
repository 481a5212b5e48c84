package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/catalog"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the starpath and built-in catalog versions",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if info, ok := debug.ReadBuildInfo(); ok && v == "(devel)" && info.Main.Version != "" {
			v = info.Main.Version
		}
		fmt.Printf("starpath %s\ncatalog  %s\n", v, catalog.DefaultFile().Version)
	},
}
