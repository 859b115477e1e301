package bite

import (
	"database/sql"
	"fmt"

	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var todayDate string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's intake, spend, and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateOrToday(todayDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			summary, err := service.SummarizeDay(sqldb, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", summary.Date)
			fmt.Fprintf(out, "Meals eaten: %d\n", summary.MealsEaten)
			printTotals(out, summary.Totals)

			if _, err := service.RecalculateGoalProgress(sqldb); err != nil {
				return err
			}
			progress, err := service.GoalProgress(sqldb)
			if err != nil {
				return err
			}
			if len(progress) == 0 {
				fmt.Fprintln(out, "Goal: not set")
				return nil
			}
			fmt.Fprintln(out, "Goal progress:")
			for _, gn := range progress {
				fmt.Fprintf(out, "  %s: %.1f/%.1f %s (%.1f%%)\n",
					gn.NutrientName, gn.ConsumedAmount, gn.TargetAmount, gn.NutrientUnit, service.ProgressPercent(gn))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
}
