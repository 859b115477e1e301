package bite

import (
	"database/sql"
	"fmt"

	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage nutrient goals and track progress",
}

var (
	goalSetCalories  int64
	goalSetWeight    float64
	goalSetFrequency string
)

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set or update the active goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.SetGoalInput{ResetFrequency: goalSetFrequency}
		if cmd.Flags().Changed("calories") {
			v := goalSetCalories
			in.TargetCalories = &v
		}
		if cmd.Flags().Changed("weight") {
			v := goalSetWeight
			in.TargetWeightKg = &v
		}
		return withDB(func(sqldb *sql.DB) error {
			if _, err := service.SetGoal(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Goal updated")
			return nil
		})
	},
}

var goalTargetCmd = &cobra.Command{
	Use:   "target <nutrient-code> <amount>",
	Short: "Set a nutrient target, e.g. protein 140",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parsePositiveFloatArg("target amount", args[1])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetGoalNutrient(sqldb, args[0], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target set: %s %.1f\n", args[0], amount)
			return nil
		})
	},
}

var goalProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Recalculate and show goal progress from the eaten log",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if _, err := service.RecalculateGoalProgress(sqldb); err != nil {
				return err
			}
			progress, err := service.GoalProgress(sqldb)
			if err != nil {
				return err
			}
			if len(progress) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No nutrient targets set")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "NUTRIENT\tCONSUMED\tTARGET\tPROGRESS")
			for _, gn := range progress {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.1f%s\t%.1f%s\t%.1f%%\n",
					gn.NutrientName, gn.ConsumedAmount, gn.NutrientUnit, gn.TargetAmount, gn.NutrientUnit, service.ProgressPercent(gn))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd, goalTargetCmd, goalProgressCmd)

	goalSetCmd.Flags().Int64Var(&goalSetCalories, "calories", 0, "Daily calorie target")
	goalSetCmd.Flags().Float64Var(&goalSetWeight, "weight", 0, "Target body weight in kg")
	goalSetCmd.Flags().StringVar(&goalSetFrequency, "frequency", "daily", "Reset frequency (daily or weekly)")
}
