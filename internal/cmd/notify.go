package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/styrcan/pulse/internal/app"
	"github.com/styrcan/pulse/internal/credentials"
	"github.com/styrcan/pulse/internal/errors"
	"github.com/styrcan/pulse/internal/realtime"
	"github.com/styrcan/pulse/internal/session"
	"github.com/styrcan/pulse/internal/tui"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Stream realtime notifications",
	Long: `Stream realtime notifications from the Pulse platform.

The notification channel authenticates with the stored access token
and reconnects automatically with exponential backoff when the
connection drops. Logging out stops the stream.

Subcommands:
  watch  Interactive notification feed
  tail   Print notifications to stdout, one per line

Examples:
  pulse notify watch
  pulse notify tail`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// notifyWatchCmd runs the interactive feed
var notifyWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive notification feed",
	Long: `Watch notifications in an interactive terminal feed.

Keys: c clears the feed, q quits.

Examples:
  pulse notify watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}
		if !application.Session.Current().Authenticated {
			return errors.NewTokenMissingError()
		}
		if err := checkStoredToken(application); err != nil {
			return err
		}

		model := tui.NewModel(application.Config.NotificationsURL())
		program := tea.NewProgram(model, tea.WithAltScreen())

		// The channel is assigned before Connect runs, so the closure
		// always sees it by the time any state change fires.
		var channel *realtime.Channel
		channel, err = application.NotificationChannel(
			func(state realtime.State) {
				program.Send(stateMsgFor(channel, state))
			},
			func(n realtime.Notification) {
				program.Send(tui.NotificationMsg{Notification: n})
			},
		)
		if err != nil {
			return err
		}
		defer channel.Close()

		// Logging out elsewhere tears the stream down.
		unsubscribe := application.Session.Subscribe(func(s session.Session) {
			if !s.Authenticated {
				channel.Close()
				program.Quit()
			}
		})
		defer unsubscribe()

		if err := channel.Connect(cmd.Context()); err != nil {
			program.Send(tui.ChannelErrorMsg{Err: err})
		}

		_, err = program.Run()
		return err
	},
}

// notifyTailCmd prints notifications line by line
var notifyTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print notifications to stdout, one per line",
	Long: `Print notifications to stdout as they arrive, one per line.
Suitable for piping into other tools.

Examples:
  pulse notify tail
  pulse notify tail | grep -i payroll`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := hydratedApp(cmd)
		if err != nil {
			return err
		}
		if !application.Session.Current().Authenticated {
			return errors.NewTokenMissingError()
		}
		if err := checkStoredToken(application); err != nil {
			return err
		}

		channel, err := application.NotificationChannel(
			func(state realtime.State) {
				application.Logger.Info("notification channel state", "state", state.String())
			},
			func(n realtime.Notification) {
				if n.Message != "" {
					fmt.Printf("%s\t%s\t%s\n", n.ReceivedAt.Format("15:04:05"), n.Title, n.Message)
					return
				}
				fmt.Printf("%s\t%s\n", n.ReceivedAt.Format("15:04:05"), n.Title)
			},
		)
		if err != nil {
			return err
		}
		defer channel.Close()

		if err := channel.Connect(cmd.Context()); err != nil {
			return err
		}

		<-cmd.Context().Done()
		return nil
	},
}

// stateMsgFor pairs a state transition with the channel's reconnect
// attempt counter so the feed can show reconnect progress.
func stateMsgFor(channel *realtime.Channel, state realtime.State) tui.StateMsg {
	msg := tui.StateMsg{State: state}
	if channel != nil {
		msg.Attempts = channel.Attempts()
	}
	return msg
}

// checkStoredToken rejects streaming with an expired access token up
// front; the server would refuse the dial anyway, this just makes the
// error actionable.
func checkStoredToken(application *app.App) error {
	pair, err := application.Credentials.LoadTokens()
	if err != nil || pair.Empty() {
		return errors.NewTokenMissingError()
	}
	// Best effort: opaque tokens carry no expiry claim and pass through.
	if expiry, err := credentials.TokenExpiry(pair.AccessToken); err == nil && time.Now().After(expiry) {
		return errors.New(errors.ErrCodeAuthTokenExpired, "stored access token has expired").
			WithSuggestion("Run 'pulse auth login' to refresh your session")
	}
	return nil
}

func init() {
	notifyCmd.AddCommand(notifyWatchCmd)
	notifyCmd.AddCommand(notifyTailCmd)

	rootCmd.AddCommand(notifyCmd)
}
