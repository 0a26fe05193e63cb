// Package app wires the client together: configuration, logging,
// credential storage, the platform client, and the session store share
// one lifecycle so commands never assemble them by hand.
package app

import (
	"context"
	"time"

	"github.com/styrcan/pulse/internal/access"
	"github.com/styrcan/pulse/internal/api"
	"github.com/styrcan/pulse/internal/config"
	"github.com/styrcan/pulse/internal/credentials"
	"github.com/styrcan/pulse/internal/log"
	"github.com/styrcan/pulse/internal/realtime"
	"github.com/styrcan/pulse/internal/session"
)

// App holds the assembled client components.
type App struct {
	Config      *config.Config
	Logger      *log.Logger
	Credentials *credentials.Store
	Client      *api.Client
	Session     *session.Store
}

// New assembles the client. The role permission table is validated here
// so a malformed table aborts startup instead of failing closed at the
// first access check.
func New(cfg *config.Config, logger *log.Logger) (*App, error) {
	if err := access.ValidateTable(); err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}

	creds := credentials.NewStore(config.HomeDir())
	client := api.NewClient(cfg.APIBaseURL, time.Duration(cfg.RequestTimeoutMs)*time.Millisecond)
	store := session.NewStore(client, creds, logger)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Credentials: creds,
		Client:      client,
		Session:     store,
	}, nil
}

// Hydrate restores the persisted session. Safe to call more than once;
// only the first call does work.
func (a *App) Hydrate(ctx context.Context) error {
	return a.Session.Hydrate(ctx)
}

// NotificationChannel builds a notification channel bound to this app's
// session: it reads the stored token, checks authentication before every
// connect, and follows the configured reconnect policy.
func (a *App) NotificationChannel(onState func(realtime.State), onNotification func(realtime.Notification)) (*realtime.Channel, error) {
	return realtime.NewChannel(realtime.Options{
		Endpoint: a.Config.NotificationsURL(),
		AccessToken: func() string {
			pair, err := a.Credentials.LoadTokens()
			if err != nil {
				return ""
			}
			return pair.AccessToken
		},
		Authenticated: func() bool {
			return a.Session.Current().Authenticated
		},
		Reconnect:      a.Config.Realtime.Reconnect,
		ReconnectBase:  time.Duration(a.Config.Realtime.ReconnectBaseMs) * time.Millisecond,
		ReconnectMax:   time.Duration(a.Config.Realtime.ReconnectMaxMs) * time.Millisecond,
		Keepalive:      time.Duration(a.Config.Realtime.KeepaliveMs) * time.Millisecond,
		OnStateChange:  onState,
		OnNotification: onNotification,
		Logger:         a.Logger,
	})
}
