package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rideaware/rideaware/internal/engine/pipeline"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "rideaware version %s\n", version)
		fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
		fmt.Fprintf(w, "  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "  Families: %v\n", pipeline.Families())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
