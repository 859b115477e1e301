package bite

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/bitebuilder/bite-cli/internal/service"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage bite local configuration",
}

var (
	cfgImportProvider string
	cfgStoreURL       string
	cfgOFFURL         string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			updates := 0
			if cmd.Flags().Changed("import-provider") {
				if err := service.SetConfig(sqldb, service.ConfigImportProvider, cfgImportProvider); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("store-url") {
				if err := service.SetConfig(sqldb, service.ConfigStoreBaseURL, cfgStoreURL); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("off-url") {
				if err := service.SetConfig(sqldb, service.ConfigOFFBaseURL, cfgOFFURL); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			cfg, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, cfg[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)

	configSetCmd.Flags().StringVar(&cfgImportProvider, "import-provider", "", "Default import provider (woolworths or openfoodfacts)")
	configSetCmd.Flags().StringVar(&cfgStoreURL, "store-url", "", "Store search base URL override")
	configSetCmd.Flags().StringVar(&cfgOFFURL, "off-url", "", "Open Food Facts base URL override")
}
