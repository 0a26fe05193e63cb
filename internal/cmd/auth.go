package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/styrcan/pulse/internal/api"
	"github.com/styrcan/pulse/internal/credentials"
	"github.com/styrcan/pulse/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the authenticated session",
	Long: `Manage the authenticated session with the Pulse platform.

The auth command provides subcommands for registering, logging in,
logging out, and checking the current session.

Tokens and the session snapshot are stored in $PULSE_HOME (default
~/.pulse) with owner-only permissions.

Subcommands:
  register         Register a new user and company
  login            Login with email and password
  logout           Logout and clear the local session
  status           Show the current session
  forgot-password  Request a password reset email
  reset-password   Complete a password reset

Examples:
  pulse auth login --email ana@acme.test
  pulse auth status
  pulse auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// authLoginCmd handles user login
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the platform",
	Long: `Login to the Pulse platform with your email and password.

Omitted flags are prompted for interactively when running in a
terminal. On success the token pair and session are saved locally and
every later command runs authenticated.

Examples:
  pulse auth login
  pulse auth login --email ana@acme.test`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		var err error
		if email == "" {
			if email, err = promptRequired("Email", false); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = promptRequired("Password", true); err != nil {
				return err
			}
		}

		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Logging in as: %s\n", email)

		if err := application.Session.Login(cmd.Context(), email, password); err != nil {
			return err
		}

		current := application.Session.Current()
		fmt.Printf("Login successful. Welcome back, %s!\n", current.User.DisplayName())
		if current.Company != nil {
			fmt.Printf("Company: %s\n", current.Company.Name)
		}
		return nil
	},
}

// authRegisterCmd creates a new user and company
var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new user and company",
	Long: `Register a new user and company on the Pulse platform.

Registration logs you in immediately: the returned token pair and
session are saved the same way login saves them.

Examples:
  pulse auth register --email ana@acme.test --first-name Ana --company "Acme HR"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.RegisterRequest{}
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")
		req.FirstName, _ = cmd.Flags().GetString("first-name")
		req.LastName, _ = cmd.Flags().GetString("last-name")
		req.CompanyName, _ = cmd.Flags().GetString("company")

		var err error
		if req.Email == "" {
			if req.Email, err = promptRequired("Email", false); err != nil {
				return err
			}
		}
		if req.Password == "" {
			if req.Password, err = promptRequired("Password", true); err != nil {
				return err
			}
		}
		if req.CompanyName == "" {
			if req.CompanyName, err = promptRequired("Company name", false); err != nil {
				return err
			}
		}

		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}

		if err := application.Session.Register(cmd.Context(), req); err != nil {
			return err
		}

		current := application.Session.Current()
		fmt.Printf("Account created for %s.\n", current.User.DisplayName())
		fmt.Println("You are now logged in.")
		return nil
	},
}

// authLogoutCmd handles user logout
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and clear the local session",
	Long: `Logout from the Pulse platform.

The server-side session is invalidated best-effort; the local tokens
and session snapshot are removed regardless, so logout always succeeds
locally even when the platform is unreachable.

Examples:
  pulse auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}

		current := application.Session.Current()
		if !current.Authenticated {
			fmt.Println("Not logged in.")
			return nil
		}

		fmt.Printf("Logging out: %s\n", current.User.Email)
		application.Session.Logout(cmd.Context())

		fmt.Println("Logged out successfully.")
		fmt.Println()
		fmt.Println("Use 'pulse auth login' to login again.")
		return nil
	},
}

// authStatusCmd shows the current session
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show the current session: user, role, company, and access token
expiry.

Examples:
  pulse auth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}

		current := application.Session.Current()
		if jsonOutput(cmd) {
			return printStatusJSON(current, application.Credentials)
		}

		printStatus(current, application.Credentials)
		return nil
	},
}

// authForgotPasswordCmd requests a password reset email
var authForgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	Long: `Request a password reset email.

The response is identical whether or not the address has an account,
so this command cannot be used to probe which emails are registered.

Examples:
  pulse auth forgot-password --email ana@acme.test`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		var err error
		if email == "" {
			if email, err = promptRequired("Email", false); err != nil {
				return err
			}
		}

		application, err := newApp(cmd)
		if err != nil {
			return err
		}

		if err := application.Client.ForgotPassword(cmd.Context(), email); err != nil {
			return err
		}

		fmt.Println("If that address has an account, a reset email is on its way.")
		return nil
	},
}

// authResetPasswordCmd completes a password reset
var authResetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Complete a password reset",
	Long: `Complete a password reset using the token from the reset email.

Examples:
  pulse auth reset-password --token <token>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		var err error
		if token == "" {
			if token, err = promptRequired("Reset token", false); err != nil {
				return err
			}
		}

		password, err := promptRequired("New password", true)
		if err != nil {
			return err
		}
		confirm, err := promptRequired("Confirm new password", true)
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		application, err := newApp(cmd)
		if err != nil {
			return err
		}

		if err := application.Client.ResetPassword(cmd.Context(), token, password, confirm); err != nil {
			return err
		}

		fmt.Println("Password updated. Use 'pulse auth login' to sign in.")
		return nil
	},
}

func promptRequired(title string, secret bool) (string, error) {
	if !tui.ShouldPrompt() {
		return "", fmt.Errorf("--%s is required in non-interactive mode", flagName(title))
	}
	return tui.PromptForString(tui.Prompt{
		Message:  title,
		Secret:   secret,
		Required: true,
	})
}

func flagName(title string) string {
	switch title {
	case "Email":
		return "email"
	case "Password", "New password":
		return "password"
	case "Company name":
		return "company"
	case "Reset token":
		return "token"
	default:
		return title
	}
}

func tokenExpiryLine(creds *credentials.Store) string {
	pair, err := creds.LoadTokens()
	if err != nil || pair.Empty() {
		return ""
	}
	expiry, err := credentials.TokenExpiry(pair.AccessToken)
	if err != nil {
		return "Token:   opaque (no expiry claim)"
	}
	if time.Now().After(expiry) {
		return fmt.Sprintf("Token:   expired %s", expiry.Format(time.RFC3339))
	}
	return fmt.Sprintf("Token:   valid until %s", expiry.Format(time.RFC3339))
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authForgotPasswordCmd)
	authCmd.AddCommand(authResetPasswordCmd)

	authLoginCmd.Flags().String("email", "", "Email address")
	authLoginCmd.Flags().String("password", "", "Password (prompted when omitted)")

	authRegisterCmd.Flags().String("email", "", "Email address")
	authRegisterCmd.Flags().String("password", "", "Password (prompted when omitted)")
	authRegisterCmd.Flags().String("first-name", "", "First name")
	authRegisterCmd.Flags().String("last-name", "", "Last name")
	authRegisterCmd.Flags().String("company", "", "Company name")

	authForgotPasswordCmd.Flags().String("email", "", "Email address")
	authResetPasswordCmd.Flags().String("token", "", "Reset token from the email")

	rootCmd.AddCommand(authCmd)
}
