package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/styrcan/pulse/internal/access"
	"github.com/styrcan/pulse/internal/errors"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Inspect role-based feature access",
	Long: `Inspect role-based feature access for the current session.

Access checks mirror what the web application shows and hides. They
are a UX convenience: the platform re-enforces every permission
server-side regardless of what this table says.

Subcommands:
  check     Check whether the current user may use a feature
  features  List every feature and the roles allowed to use it
  roles     List the role hierarchy

Examples:
  pulse access check payroll:run
  pulse access features`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// accessCheckCmd checks one feature against the current session
var accessCheckCmd = &cobra.Command{
	Use:   "check <feature>",
	Short: "Check whether the current user may use a feature",
	Long: `Check whether the current user's role may use the given feature.

Unknown feature keys deny rather than error at check time; this
command surfaces them explicitly so typos are caught.

Examples:
  pulse access check payroll:run
  pulse access check pto:approve --role manager`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature := args[0]

		role, err := resolveRole(cmd)
		if err != nil {
			return err
		}

		if access.AllowedRoles(feature) == nil {
			return errors.NewUnknownFeatureError(feature).
				WithSuggestion("Run 'pulse access features' to list valid feature keys")
		}

		if access.CanAccess(role, feature) {
			fmt.Printf("allowed: role %s may use %s\n", role, feature)
			return nil
		}

		return errors.New(errors.ErrCodeAccessDenied,
			fmt.Sprintf("role %s may not use %s", role, feature)).
			WithSuggestion("Allowed roles: " + rolesLine(access.AllowedRoles(feature)))
	},
}

// accessFeaturesCmd lists the permission table
var accessFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "List every feature and the roles allowed to use it",
	RunE: func(cmd *cobra.Command, args []string) error {
		features := access.Features()
		sort.Strings(features)

		for _, feature := range features {
			fmt.Printf("%-18s %s\n", feature, rolesLine(access.AllowedRoles(feature)))
		}
		return nil
	},
}

// accessRolesCmd lists the role hierarchy
var accessRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the role hierarchy",
	Long: `List the role hierarchy in ascending privilege order.

Examples:
  pulse access roles`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, role := range access.AllRoles() {
			fmt.Printf("%d  %s\n", role.Rank(), role)
		}
		return nil
	},
}

// resolveRole picks the role to check: --role when given, otherwise the
// current session's role.
func resolveRole(cmd *cobra.Command) (access.Role, error) {
	if flag, _ := cmd.Flags().GetString("role"); flag != "" {
		return access.ParseRole(flag)
	}

	application, err := hydratedApp(cmd)
	if err != nil {
		return "", err
	}

	current := application.Session.Current()
	if !current.Authenticated {
		return "", errors.NewTokenMissingError().
			WithSuggestion("Or pass --role to check a role without logging in")
	}
	return current.User.Role, nil
}

func rolesLine(roles []access.Role) string {
	line := ""
	for i, role := range roles {
		if i > 0 {
			line += ", "
		}
		line += string(role)
	}
	return line
}

func init() {
	accessCmd.AddCommand(accessCheckCmd)
	accessCmd.AddCommand(accessFeaturesCmd)
	accessCmd.AddCommand(accessRolesCmd)

	accessCheckCmd.Flags().String("role", "", "Check a specific role instead of the session's")

	rootCmd.AddCommand(accessCmd)
}
