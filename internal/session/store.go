package session

import (
	"context"
	"sync"

	"github.com/styrcan/pulse/internal/api"
	"github.com/styrcan/pulse/internal/credentials"
	"github.com/styrcan/pulse/internal/errors"
	"github.com/styrcan/pulse/internal/log"
)

// AuthAPI is the slice of the platform client the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	SetToken(token string)
	ClearToken()
}

// Subscriber receives a session snapshot after every observable update.
type Subscriber func(Session)

// Store is the single owner of the mutable session. All mutation funnels
// through its setters, so no observer can see a partial update (for
// example a User without Authenticated).
type Store struct {
	client AuthAPI
	creds  *credentials.Store
	logger *log.Logger

	mu      sync.Mutex
	session Session

	// epoch increments on every clear or replacement. In-flight auth
	// responses re-check it before applying, so a late response against
	// a since-changed session is discarded instead of resurrecting it.
	epoch uint64

	hydrateOnce sync.Once

	subMu       sync.Mutex
	subscribers map[int]Subscriber
	nextSubID   int
}

// NewStore creates a session store. The session starts empty and not
// hydrated: guarded logic must not act until Hydrate has run.
func NewStore(client AuthAPI, creds *credentials.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{
		client:      client,
		creds:       creds,
		logger:      logger.WithGroup("session"),
		subscribers: make(map[int]Subscriber),
	}
}

// Current returns a copy of the session state.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe registers fn to run after every observable session update.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(snapshot Session) {
	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Login exchanges credentials for a session. On success the token pair is
// persisted and user, company, and the authenticated flag land as one
// observable update. On failure the session is untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	return s.applyAuthResponse(epoch, resp)
}

// Register creates an account and logs in, with the same atomicity as
// Login.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) error {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return err
	}

	return s.applyAuthResponse(epoch, resp)
}

// applyAuthResponse persists tokens and applies the authenticated session
// atomically. A stale epoch means the session changed while the request
// was in flight; the late response is dropped and its tokens are not
// persisted.
func (s *Store) applyAuthResponse(epoch uint64, resp *api.AuthResponse) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Warn("discarding late auth response", "user_id", resp.User.ID)
		return errors.New(errors.ErrCodeSessionStale, "session changed while authenticating")
	}

	if err := s.creds.SaveTokens(credentials.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		s.mu.Unlock()
		return err
	}

	user := resp.User
	company := resp.Company
	s.session.User = &user
	s.session.Company = &company
	s.session.Authenticated = true
	s.session.Hydrated = true
	s.epoch++

	s.persistLocked()
	snapshot := s.session
	s.mu.Unlock()

	s.logger.Info("session established", "user_id", user.ID, "company_id", company.ID)
	s.notify(snapshot)

	// Defensive double-check of the tenant pairing the server returned.
	if !s.Validate() {
		return errors.NewTenantMismatchError(user.CompanyID, company.ID)
	}
	return nil
}

// Logout best-effort invalidates the remote session, then clears tokens
// and session unconditionally. A malfunctioning server cannot deny a
// client-side logout, so remote errors are logged and swallowed.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.WithError(err).Warn("remote logout failed, clearing local session anyway")
	}
	s.Clear()
}

// SetUser replaces the cached user, maintaining the authenticated
// invariant. Used after profile refreshes.
func (s *Store) SetUser(user *api.User) {
	s.mu.Lock()
	s.session.User = user
	s.session.Authenticated = user != nil
	s.persistLocked()
	snapshot := s.session
	s.mu.Unlock()
	s.notify(snapshot)
}

// SetCompany replaces the cached company.
func (s *Store) SetCompany(company *api.Company) {
	s.mu.Lock()
	s.session.Company = company
	s.persistLocked()
	snapshot := s.session
	s.mu.Unlock()
	s.notify(snapshot)
}

// Clear resets the session to empty and removes all durable credentials
// in the same operation. Hydration state survives: a cleared session is
// still a known (empty) session.
func (s *Store) Clear() {
	s.mu.Lock()
	snapshot := s.clearLocked()
	s.mu.Unlock()

	s.client.ClearToken()
	s.notify(snapshot)
}

// clearLocked resets session state and durable credentials. Callers hold
// s.mu and are responsible for notifying with the returned snapshot.
func (s *Store) clearLocked() Session {
	if err := s.creds.Clear(); err != nil {
		s.logger.WithError(err).Warn("failed to clear stored credentials")
	}
	s.session.User = nil
	s.session.Company = nil
	s.session.Authenticated = false
	s.epoch++
	return s.session
}

// persistLocked writes the durable session snapshot. Callers hold s.mu.
func (s *Store) persistLocked() {
	blob, err := marshalSnapshot(s.session)
	if err != nil {
		s.logger.WithError(err).Warn("failed to serialize session snapshot")
		return
	}
	if err := s.creds.SaveSession(blob); err != nil {
		s.logger.WithError(err).Warn("failed to persist session snapshot")
	}
}

// Hydrate restores the persisted session exactly once. Completion sets
// Hydrated=true whether or not a session was found, then the validator
// runs. Before Hydrate completes the store fails closed: the zero session
// is unauthenticated and not hydrated.
func (s *Store) Hydrate(ctx context.Context) error {
	var hydrateErr error
	s.hydrateOnce.Do(func() {
		hydrateErr = s.hydrate(ctx)
	})
	return hydrateErr
}

func (s *Store) hydrate(ctx context.Context) error {
	tokens, err := s.creds.LoadTokens()
	if err != nil {
		s.logger.WithError(err).Warn("failed to load stored tokens")
	}

	blob, blobErr := s.creds.LoadSession()
	if blobErr != nil {
		s.logger.WithError(blobErr).Warn("failed to load session snapshot")
	}

	s.mu.Lock()
	if blob != nil && !tokens.Empty() {
		snap, err := unmarshalSnapshot(blob)
		if err != nil {
			s.logger.WithError(err).Warn("discarding corrupt session snapshot")
		} else if snap.User != nil {
			s.session.User = snap.User
			s.session.Company = snap.Company
			s.session.Authenticated = true
		}
	}
	s.session.Hydrated = true
	snapshot := s.session
	s.mu.Unlock()

	if snapshot.Authenticated {
		s.client.SetToken(tokens.AccessToken)
	}
	s.notify(snapshot)

	s.logger.Debug("session hydrated", "authenticated", snapshot.Authenticated)

	if !s.Validate() {
		return errors.NewTenantMismatchError(userCompanyID(snapshot), companyID(snapshot))
	}
	return nil
}

func userCompanyID(s Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.CompanyID
}

func companyID(s Session) string {
	if s.Company == nil {
		return ""
	}
	return s.Company.ID
}
