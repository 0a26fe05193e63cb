package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/styrcan/pulse/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(info.Short())
			return nil
		}
		fmt.Println(info.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")

	rootCmd.AddCommand(versionCmd)
}
