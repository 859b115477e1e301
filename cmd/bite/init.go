package bite

import (
	"fmt"
	"os"

	"github.com/bitebuilder/bite-cli/internal/app"
	"github.com/bitebuilder/bite-cli/internal/db"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local bite database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized bite database at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if env := os.Getenv("BITE_DB"); env != "" {
		return env, nil
	}
	return app.DefaultDBPath()
}
