package bite

import (
	"database/sql"
	"fmt"

	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Orphan meal items: %d\n", report.OrphanMealItems)
			fmt.Fprintf(cmd.OutOrStdout(), "Orphan eaten meals: %d\n", report.OrphanEatenMeals)
			fmt.Fprintf(cmd.OutOrStdout(), "Invalid nutrition payloads: %d\n", report.InvalidNutrition)
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared nutrition payloads: %d\n", report.FixedNutritionRows)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if report.OrphanMealItems > 0 || report.OrphanEatenMeals > 0 || report.InvalidNutrition > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
