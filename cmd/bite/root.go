package bite

import (
	"fmt"
	"os"

	"github.com/bitebuilder/bite-cli/internal/app"
	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "bite",
	Short: "bite tracks groceries, meals, and nutrition value for money",
	Long:  "bite is a local-first nutrition and grocery CLI with store import, meal building, goals, and price-efficiency metrics.",
}

func Execute() {
	app.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
}
