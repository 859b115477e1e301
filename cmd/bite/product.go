package bite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bitebuilder/bite-cli/internal/provider/openfoodfacts"
	"github.com/bitebuilder/bite-cli/internal/provider/woolworths"
	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the local product catalog",
}

var (
	productAddBarcode    string
	productAddBrand      string
	productAddSize       string
	productAddPrice      float64
	productAddCupPrice   float64
	productAddCupUnit    string
	productAddHealthStar string
	productAddNutrients  []string
)

var productAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a product by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.SaveProductInput{
			Name:       args[0],
			Barcode:    productAddBarcode,
			Brand:      productAddBrand,
			Size:       productAddSize,
			HealthStar: productAddHealthStar,
		}
		if cmd.Flags().Changed("price") {
			v := productAddPrice
			in.PriceCurrent = &v
		}
		if cmd.Flags().Changed("cup-price") {
			v := productAddCupPrice
			in.CupPriceValue = &v
			in.CupPriceUnit = productAddCupUnit
		}
		for _, spec := range productAddNutrients {
			row, err := parseNutrientSpec(spec)
			if err != nil {
				return err
			}
			in.Nutrients = append(in.Nutrients, row)
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.SaveProduct(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added product %s\n", id)
			return nil
		})
	},
}

var productShowCmd = &cobra.Command{
	Use:   "show <id-or-barcode>",
	Short: "Show one product with resolved nutrition and pricing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetProduct(sqldb, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s\n", p.Name)
			if p.Brand != "" {
				fmt.Fprintf(out, "Brand: %s\n", p.Brand)
			}
			if p.Barcode != "" {
				fmt.Fprintf(out, "Barcode: %s\n", p.Barcode)
			}
			if p.Size != "" {
				fmt.Fprintf(out, "Size: %s\n", p.Size)
			}
			fmt.Fprintf(out, "Price: %s\n", formatOptionalFloat(p.PriceCurrent, 2))
			if perKg, ok := service.NormalizePricePerKg(p); ok {
				fmt.Fprintf(out, "Price/kg: %.2f\n", perKg)
			} else {
				fmt.Fprintln(out, "Price/kg: unknown")
			}
			if p.HealthStar != "" {
				fmt.Fprintf(out, "Health star: %s\n", p.HealthStar)
			}
			fmt.Fprintln(out, "Per 100g:")
			for _, row := range []struct {
				label string
				code  string
			}{
				{"Energy kcal", "energy_kcal"},
				{"Protein g", "protein"},
				{"Fat g", "fat_total"},
				{"Sat fat g", "fat_saturated"},
				{"Carbs g", "carbohydrate"},
				{"Sugars g", "sugars"},
				{"Fiber g", "fiber"},
				{"Sodium mg", "sodium"},
			} {
				fmt.Fprintf(out, "  %s: %.1f\n", row.label, service.ResolveNutrientPer100g(p, row.code))
			}
			return nil
		})
	},
}

var productSearchLimit int

var productSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the local catalog by name or brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			products, err := service.SearchProducts(sqldb, args[0], productSearchLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tBRAND\tPRICE/KG")
			for i := range products {
				p := &products[i]
				perKg := "-"
				if v, ok := service.NormalizePricePerKg(p); ok {
					perKg = fmt.Sprintf("%.2f", v)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Brand, perKg)
			}
			return nil
		})
	},
}

var (
	productImportProvider string
	productImportLimit    int
)

var productImportCmd = &cobra.Command{
	Use:   "import <query-or-barcode>",
	Short: "Import products from a store search or a barcode lookup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			provider := strings.TrimSpace(productImportProvider)
			if provider == "" {
				configured, err := service.GetConfig(sqldb, service.ConfigImportProvider)
				if err != nil {
					return err
				}
				provider = configured
			}
			if provider == "" {
				provider = "woolworths"
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			switch provider {
			case "woolworths":
				return importFromWoolworths(ctx, cmd, sqldb, args[0])
			case "openfoodfacts":
				return importFromOpenFoodFacts(ctx, cmd, sqldb, args[0])
			default:
				return fmt.Errorf("unknown import provider %q", provider)
			}
		})
	},
}

func importFromWoolworths(ctx context.Context, cmd *cobra.Command, sqldb *sql.DB, query string) error {
	baseURL, err := service.GetConfig(sqldb, service.ConfigStoreBaseURL)
	if err != nil {
		return err
	}
	client := &woolworths.Client{BaseURL: baseURL}
	results, err := client.Search(ctx, query, productImportLimit)
	if err != nil {
		return err
	}
	for _, r := range results {
		barcode := r.Barcode
		if barcode == "" {
			barcode = "WW-STOCK-" + r.Stockcode
		}
		id, err := service.SaveProduct(sqldb, service.SaveProductInput{
			Barcode:          barcode,
			Name:             r.Name,
			Brand:            r.Brand,
			Description:      r.Description,
			Size:             r.Size,
			PriceCurrent:     r.PriceCurrent,
			PriceWas:         r.PriceWas,
			IsOnSpecial:      r.IsOnSpecial,
			CupPriceValue:    r.CupPriceValue,
			CupPriceUnit:     r.CupPriceUnit,
			HealthStar:       r.HealthStar,
			ServingSizeValue: r.ServingSizeValue,
			ServingSizeUnit:  r.ServingSizeUnit,
			ServingsPerPack:  r.ServingsPerPack,
			NutritionBasis:   nutritionBasis(r.Size, r.ServingSizeUnit),
			PrimarySource:    "woolworths",
			Nutrition:        r.Nutrition,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s)\n", r.Name, id)
	}
	return nil
}

func importFromOpenFoodFacts(ctx context.Context, cmd *cobra.Command, sqldb *sql.DB, barcode string) error {
	baseURL, err := service.GetConfig(sqldb, service.ConfigOFFBaseURL)
	if err != nil {
		return err
	}
	client := &openfoodfacts.Client{BaseURL: baseURL}
	r, err := client.LookupBarcode(ctx, barcode)
	if err != nil {
		return err
	}
	rows := make([]service.NutrientAmount, 0, len(r.Nutrients))
	for _, n := range r.Nutrients {
		rows = append(rows, service.NutrientAmount{Code: n.Code, Per100g: n.Per100g, PerServing: n.PerServing})
	}
	id, err := service.SaveProduct(sqldb, service.SaveProductInput{
		Barcode:          r.Barcode,
		Name:             r.Name,
		Brand:            r.Brand,
		Size:             r.Quantity,
		ServingSizeValue: r.ServingSizeValue,
		ServingSizeUnit:  r.ServingSizeUnit,
		NutritionBasis:   nutritionBasis(r.Quantity, r.ServingSizeUnit),
		PrimarySource:    "openfoodfacts",
		Nutrients:        rows,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s)\n", r.Name, id)
	return nil
}

var liquidSizePattern = regexp.MustCompile(`(?i)(?:\b|^)[0-9]+(?:\.[0-9]+)?\s*m?l\b`)

// nutritionBasis decides whether per-100 values are per 100g or per 100ml.
func nutritionBasis(size, servingUnit string) string {
	u := strings.ToLower(strings.TrimSpace(servingUnit))
	if u == "ml" || u == "l" {
		return "per_100ml"
	}
	if liquidSizePattern.MatchString(size) {
		return "per_100ml"
	}
	return "per_100g"
}

func parseNutrientSpec(spec string) (service.NutrientAmount, error) {
	code, raw, found := strings.Cut(spec, "=")
	if !found {
		return service.NutrientAmount{}, fmt.Errorf("invalid --nutrient %q (expected code=amount)", spec)
	}
	amount, err := parsePositiveFloatArg("nutrient amount", raw)
	if err != nil {
		return service.NutrientAmount{}, err
	}
	return service.NutrientAmount{Code: strings.TrimSpace(code), Per100g: &amount}, nil
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productAddCmd, productShowCmd, productSearchCmd, productImportCmd)

	productAddCmd.Flags().StringVar(&productAddBarcode, "barcode", "", "Product barcode")
	productAddCmd.Flags().StringVar(&productAddBrand, "brand", "", "Brand name")
	productAddCmd.Flags().StringVar(&productAddSize, "size", "", "Package size, e.g. 750g")
	productAddCmd.Flags().Float64Var(&productAddPrice, "price", 0, "Shelf price")
	productAddCmd.Flags().Float64Var(&productAddCupPrice, "cup-price", 0, "Unit (cup) price value")
	productAddCmd.Flags().StringVar(&productAddCupUnit, "cup-unit", "1kg", "Unit price basis (1kg, 100g, 1l, 100ml)")
	productAddCmd.Flags().StringVar(&productAddHealthStar, "health-star", "", "Health star rating, e.g. 4.5")
	productAddCmd.Flags().StringArrayVar(&productAddNutrients, "nutrient", nil, "Per-100g amount as code=value (repeatable)")

	productSearchCmd.Flags().IntVar(&productSearchLimit, "limit", 20, "Maximum results")

	productImportCmd.Flags().StringVar(&productImportProvider, "provider", "", "Import provider (woolworths or openfoodfacts)")
	productImportCmd.Flags().IntVar(&productImportLimit, "limit", 10, "Maximum products to import")
}
