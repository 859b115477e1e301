package bite

import (
	"database/sql"
	"fmt"

	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var eatCmd = &cobra.Command{
	Use:   "eat",
	Short: "Log eaten meals",
}

var (
	eatLogDate string
	eatLogTime string
)

var eatLogCmd = &cobra.Command{
	Use:   "log <meal-id>",
	Short: "Log a meal as eaten",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(eatLogDate, eatLogTime)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.LogMeal(sqldb, args[0], at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged meal %s at %s\n", id, at.Format("2006-01-02 15:04"))
			return nil
		})
	},
}

var eatListDate string

var eatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meals eaten on a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateOrToday(eatListDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			eaten, err := service.ListEatenMeals(sqldb, date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "TIME\tTYPE\tMEAL")
			for _, e := range eaten {
				name := e.MealName
				if name == "" {
					name = e.MealID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.EatenAt.Format("15:04"), e.MealType, name)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eatCmd)
	eatCmd.AddCommand(eatLogCmd, eatListCmd)

	eatLogCmd.Flags().StringVar(&eatLogDate, "date", "", "Date YYYY-MM-DD (default today)")
	eatLogCmd.Flags().StringVar(&eatLogTime, "time", "", "Time HH:MM (default now)")
	eatListCmd.Flags().StringVar(&eatListDate, "date", "", "Date YYYY-MM-DD (default today)")
}
