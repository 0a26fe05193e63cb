package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/styrcan/pulse/internal/api"
	"github.com/styrcan/pulse/internal/errors"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and update your profile",
	Long: `View and update the authenticated user's profile.

The remote record is authoritative; these commands refresh the local
session cache from it.

Subcommands:
  show    Fetch and display the current user and company
  update  Update profile fields

Examples:
  pulse profile show
  pulse profile update --first-name Ana`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// profileShowCmd refreshes the cached user and company from the API
var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch and display the current user and company",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}
		if !application.Session.Current().Authenticated {
			return errors.NewTokenMissingError()
		}

		user, err := application.Client.GetCurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		application.Session.SetUser(user)

		company, err := application.Client.GetCurrentCompany(cmd.Context())
		if err != nil {
			return err
		}
		application.Session.SetCompany(company)

		printStatus(application.Session.Current(), application.Credentials)
		return nil
	},
}

// profileUpdateCmd updates mutable profile fields
var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update the mutable fields of your profile. Only the flags you pass
are changed.

Examples:
  pulse profile update --first-name Ana --last-name Petrova`,
	RunE: func(cmd *cobra.Command, args []string) error {
		update := api.ProfileUpdate{}
		update.FirstName, _ = cmd.Flags().GetString("first-name")
		update.LastName, _ = cmd.Flags().GetString("last-name")
		update.Phone, _ = cmd.Flags().GetString("phone")

		if update == (api.ProfileUpdate{}) {
			return fmt.Errorf("nothing to update: pass at least one of --first-name, --last-name, --phone")
		}

		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}
		if !application.Session.Current().Authenticated {
			return errors.NewTokenMissingError()
		}

		user, err := application.Client.UpdateProfile(cmd.Context(), update)
		if err != nil {
			return err
		}
		application.Session.SetUser(user)

		fmt.Printf("Profile updated: %s\n", user.DisplayName())
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	profileUpdateCmd.Flags().String("first-name", "", "First name")
	profileUpdateCmd.Flags().String("last-name", "", "Last name")
	profileUpdateCmd.Flags().String("phone", "", "Phone number")

	rootCmd.AddCommand(profileCmd)
}
