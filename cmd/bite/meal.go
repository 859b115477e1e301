package bite

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Build and inspect meal templates",
}

var (
	mealCreateName  string
	mealCreateNotes string
)

var mealCreateCmd = &cobra.Command{
	Use:   "create <type>",
	Short: "Create a meal template (breakfast, lunch, dinner, snack)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreateMeal(sqldb, service.CreateMealInput{
				Name:     mealCreateName,
				MealType: args[0],
				Notes:    mealCreateNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created meal %s\n", id)
			return nil
		})
	},
}

var mealAddCmd = &cobra.Command{
	Use:   "add <meal-id> <product-id-or-barcode> <grams>",
	Short: "Add a product to a meal",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, err := parsePositiveFloatArg("grams", args[2])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			itemID, err := service.AddMealItem(sqldb, args[0], args[1], quantity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item %s\n", itemID)
			return nil
		})
	},
}

var mealRemoveItemCmd = &cobra.Command{
	Use:   "remove-item <item-id>",
	Short: "Remove an item from a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.RemoveMealItem(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed item %s\n", args[0])
			return nil
		})
	},
}

var mealShowCmd = &cobra.Command{
	Use:   "show <meal-id>",
	Short: "Show a meal's items and aggregated totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			meal, err := service.GetMeal(sqldb, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := meal.Name
			if name == "" {
				name = meal.MealType
			}
			fmt.Fprintf(out, "Meal: %s (%s)\n", name, meal.MealType)
			for _, item := range meal.Items {
				label := "(missing product)"
				if item.Product != nil {
					label = item.Product.Name
				}
				fmt.Fprintf(out, "  %s\t%.0fg\t%s", item.ID, item.Quantity, label)
				if n := service.MealItemNutrition(item); n != nil {
					fmt.Fprintf(out, "\tP %.1fg | %.0f kcal", n.ProteinG, n.EnergyKcal)
				}
				fmt.Fprintln(out)
			}
			printTotals(out, service.AggregateMealTotals(meal))
			return nil
		})
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meal templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			meals, err := service.ListMeals(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTYPE\tNAME")
			for _, m := range meals {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.MealType, m.Name)
			}
			return nil
		})
	},
}

func printTotals(out io.Writer, t service.NutrientTotals) {
	fmt.Fprintf(out, "Totals: %.0f kcal | P %.1fg | F %.1fg | C %.1fg\n", t.EnergyKcal, t.ProteinG, t.FatTotalG, t.CarbohydrateG)
	fmt.Fprintf(out, "Fiber: %.1fg | Sugars: %.1fg | Sodium: %.0fmg\n", t.FiberG, t.SugarsG, t.SodiumMg)
	fmt.Fprintf(out, "Cost: $%.2f\n", t.PriceTotal)
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealCreateCmd, mealAddCmd, mealRemoveItemCmd, mealShowCmd, mealListCmd)

	mealCreateCmd.Flags().StringVar(&mealCreateName, "name", "", "Display name for the meal")
	mealCreateCmd.Flags().StringVar(&mealCreateNotes, "notes", "", "Free-form notes")
}
