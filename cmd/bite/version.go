package bite

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		version := appVersion
		if version == "dev" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "bite %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
