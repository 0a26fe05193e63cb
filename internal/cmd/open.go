package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/styrcan/pulse/internal/guard"
)

// openCmd resolves guarded deep links into the web application.
var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Resolve a guarded deep link into the web application",
	Long: `Resolve an application path through the route guard and print the
URL the navigation would land on.

Protected paths resolve to the login page (with the original
destination preserved) when not logged in. Public pages like /login
resolve to the dashboard when already logged in.

Examples:
  pulse open /payroll
  pulse open /login`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}

		current := application.Session.Current()
		decision := guard.Evaluate(path, current.Authenticated, current.Hydrated)

		target := path
		if decision.Action != guard.ActionAllow {
			target = decision.Target
		}

		base := strings.TrimSuffix(application.Config.WebBaseURL, "/")
		fmt.Printf("%s\n", base+target)

		if decision.Action != guard.ActionAllow {
			application.Logger.Debug("navigation redirected",
				"path", path,
				"action", decision.Action.String(),
				"target", decision.Target)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
