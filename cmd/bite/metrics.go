package bite

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show value-for-money and health metrics",
}

var metricsProductCmd = &cobra.Command{
	Use:   "product <id-or-barcode>",
	Short: "Show efficiency metrics and health signals for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetProduct(sqldb, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Product: %s\n", p.Name)
			printMetrics(out, service.ComputeMetrics(p))

			signals := service.ClassifySignals(p)
			fmt.Fprintln(out, "Health signals:")
			fmt.Fprintf(out, "  Fat:protein ratio: %s\n", signals.FatToProtein)
			fmt.Fprintf(out, "  Sugar:fiber ratio: %s\n", signals.SugarToFiber)
			fmt.Fprintf(out, "  Saturated fat share: %s\n", signals.SaturatedFatShare)
			fmt.Fprintf(out, "  Sodium density: %s\n", signals.SodiumDensity)
			fmt.Fprintf(out, "  Fiber density: %s\n", signals.FiberDensity)
			fmt.Fprintf(out, "  Protein density: %s\n", signals.ProteinDensity)
			return nil
		})
	},
}

var metricsMealCmd = &cobra.Command{
	Use:   "meal <meal-id>",
	Short: "Show quantity-weighted efficiency metrics for a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			meal, err := service.GetMeal(sqldb, args[0])
			if err != nil {
				return err
			}
			name := meal.Name
			if name == "" {
				name = meal.MealType
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meal: %s\n", name)
			printMetrics(cmd.OutOrStdout(), service.ComputeMealMetrics(meal))
			return nil
		})
	},
}

func printMetrics(out io.Writer, m *service.EfficiencyMetrics) {
	if m == nil {
		fmt.Fprintln(out, "Metrics: unavailable (no price basis)")
		return
	}
	fmt.Fprintf(out, "Price/kg: %.2f\n", m.PricePerKg)
	fmt.Fprintf(out, "Price/100g: %.2f\n", m.PricePer100g)
	fmt.Fprintf(out, "Protein/$: %s\n", formatOptionalFloat(m.ProteinPerDollar, 2))
	fmt.Fprintf(out, "Kcal/$: %s\n", formatOptionalFloat(m.KcalPerDollar, 1))
	fmt.Fprintf(out, "Protein:fat ratio: %s\n", formatOptionalFloat(m.ProteinToFatRatio, 2))
	fmt.Fprintf(out, "Protein/kcal: %s\n", formatOptionalFloat(m.ProteinPerKcal, 3))
	fmt.Fprintf(out, "Health value: %s\n", formatOptionalFloat(m.HealthValue, 3))
	fmt.Fprintf(out, "Yield index: %s\n", formatOptionalFloat(m.YieldIndex, 2))
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.AddCommand(metricsProductCmd, metricsMealCmd)
}
