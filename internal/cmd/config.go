package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/styrcan/pulse/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the client configuration",
	Long: `Inspect the active client configuration.

Configuration is read from $PULSE_HOME/config.yaml (or --config) with
defaults for omitted fields. PULSE_API_URL and PULSE_WEB_URL override
the endpoint defaults.

Subcommands:
  show  Print the active configuration

Examples:
  pulse config show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configShowCmd prints the resolved configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("# state directory: %s\n", config.HomeDir())
		fmt.Printf("# notification endpoint: %s\n", cfg.NotificationsURL())

		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(cfg)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(configCmd)
}
