// Package cmd implements the pulse command-line interface.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/styrcan/pulse/internal/app"
	"github.com/styrcan/pulse/internal/config"
	"github.com/styrcan/pulse/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "StyrCan Pulse workforce platform client",
	Long: `pulse is the command-line client for the StyrCan Pulse workforce platform.

It manages your authenticated session, checks role-based feature access,
guards deep links into the web application, and streams realtime
notifications from the platform.

Session state and tokens are stored under ~/.pulse (override with
PULSE_HOME).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// lipgloss and termenv honor NO_COLOR.
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			os.Setenv("NO_COLOR", "1")
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is $PULSE_HOME/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("format", "text", "output format (text|json)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}

// loadConfig resolves the active configuration from the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadOrDefault(path)
}

// newApp assembles the application from persistent flags and config.
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := log.ParseLevel(cfg.Log.Level)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = log.LevelDebug
	}
	logger := log.New(log.Config{
		Level:  level,
		Format: log.ParseFormat(cfg.Log.Format),
		Output: log.OutputStderr(),
	})

	return app.New(cfg, logger)
}

// hydratedApp assembles the application and restores the persisted
// session. A stored session that fails validation has already been
// cleared by the time this returns; the command proceeds logged out.
func hydratedApp(cmd *cobra.Command) (*app.App, error) {
	application, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := application.Hydrate(cmd.Context()); err != nil {
		application.Logger.WithError(err).Warn("stored session was invalid and has been cleared")
	}
	return application, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("format")
	return format == "json"
}
