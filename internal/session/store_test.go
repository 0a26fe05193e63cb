package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styrcan/pulse/internal/access"
	"github.com/styrcan/pulse/internal/api"
	"github.com/styrcan/pulse/internal/credentials"
	"github.com/styrcan/pulse/internal/errors"
	"github.com/styrcan/pulse/internal/log"
)

// fakeAPI implements AuthAPI with programmable responses.
type fakeAPI struct {
	loginFn    func(ctx context.Context, email, password string) (*api.AuthResponse, error)
	registerFn func(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	logoutErr  error

	token       string
	logoutCalls int
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	return f.registerFn(ctx, req)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAPI) SetToken(token string) { f.token = token }
func (f *fakeAPI) ClearToken()           { f.token = "" }

func authResponse(userCompanyID, companyID string) *api.AuthResponse {
	return &api.AuthResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: api.User{
			ID:        "user-1",
			Email:     "ana@acme.test",
			FirstName: "Ana",
			Role:      access.RoleAdmin,
			CompanyID: userCompanyID,
		},
		Company: api.Company{
			ID:   companyID,
			Name: "Acme HR",
		},
	}
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: log.OutputStderr()})
}

func newTestStore(t *testing.T, client AuthAPI) (*Store, *credentials.Store) {
	t.Helper()
	creds := credentials.NewStore(t.TempDir())
	return NewStore(client, creds, quietLogger()), creds
}

func TestStore_Login(t *testing.T) {
	client := &fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return authResponse("company-1", "company-1"), nil
		},
	}
	store, creds := newTestStore(t, client)

	require.NoError(t, store.Login(context.Background(), "ana@acme.test", "hunter2"))

	current := store.Current()
	assert.True(t, current.Authenticated)
	require.NotNil(t, current.User)
	assert.Equal(t, "user-1", current.User.ID)
	require.NotNil(t, current.Company)
	assert.Equal(t, "company-1", current.Company.ID)

	pair, err := creds.LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.AccessToken)
	assert.Equal(t, "refresh-1", pair.RefreshToken)
}

func TestStore_Login_FailureLeavesSessionUntouched(t *testing.T) {
	client := &fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return nil, errors.NewInvalidCredentialsError()
		},
	}
	store, creds := newTestStore(t, client)

	err := store.Login(context.Background(), "ana@acme.test", "wrong")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthInvalidCredentials))

	current := store.Current()
	assert.False(t, current.Authenticated)
	assert.Nil(t, current.User)

	pair, err := creds.LoadTokens()
	require.NoError(t, err)
	assert.True(t, pair.Empty())
}

func TestStore_Login_SingleObservableUpdate(t *testing.T) {
	client := &fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return authResponse("company-1", "company-1"), nil
		},
	}
	store, _ := newTestStore(t, client)

	var snapshots []Session
	store.Subscribe(func(s Session) {
		snapshots = append(snapshots, s)
	})

	require.NoError(t, store.Login(context.Background(), "ana@acme.test", "hunter2"))

	require.Len(t, snapshots, 1)
	snap := snapshots[0]
	assert.True(t, snap.Authenticated)
	assert.NotNil(t, snap.User)
	assert.NotNil(t, snap.Company)
}

func TestStore_InvariantAfterEveryMutation(t *testing.T) {
	client := &fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return authResponse("company-1", "company-1"), nil
		},
	}
	store, _ := newTestStore(t, client)

	// Every observable snapshot must satisfy Authenticated == (User != nil)
	store.Subscribe(func(s Session) {
		assert.Equal(t, s.User != nil, s.Authenticated)
	})

	require.NoError(t, store.Login(context.Background(), "ana@acme.test", "hunter2"))

	user := store.Current().User
	store.SetUser(user)
	store.SetUser(nil)
	assert.False(t, store.Current().Authenticated)

	store.SetCompany(&api.Company{ID: "company-1"})
	store.Clear()
	assert.False(t, store.Current().Authenticated)
}

func TestStore_LoginThenLogout(t *testing.T) {
	client := &fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return authResponse("company-1", "company-1"), nil
		},
	}
	store, creds := newTestStore(t, client)

	require.NoError(t, store.Login(context.Background(), "ana@acme.test", "hunter2"))
	store.Logout(context.Background())

	current := store.Current()
	assert.False(t, current.Authenticated)
	assert.Nil(t, current.User)
	assert.Nil(t, current.Company)

	pair, err := creds.LoadTokens()
	require.NoError(t, err)
	assert.True(t, pair.Empty())

	blob, err := creds.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, blob)

	assert.Equal(t, 1, client.logoutCalls)
	assert.Empty(t, client.token)
}

func TestStore_Logout_RemoteFailureStillClears(t *testing.T) {
	client := &fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return authResponse("company-1", "company-1"), nil
		},
		logoutErr: fmt.Errorf("server on fire"),
	}
	store, creds := newTestStore(t, client)

	require.NoError(t, store.Login(context.Background(), "ana@acme.test", "hunter2"))
	store.Logout(context.Background())

	assert.False(t, store.Current().Authenticated)
	pair, err := creds.LoadTokens()
	require.NoError(t, err)
	assert.True(t, pair.Empty())
}

func TestStore_LateLoginResponseDiscarded(t *testing.T) {
	store := (*Store)(nil)
	client := &fakeAPI{}
	client.loginFn = func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
		// The session changes while this request is in flight.
		store.Clear()
		return authResponse("company-1", "company-1"), nil
	}
	store, creds := newTestStore(t, client)

	err := store.Login(context.Background(), "ana@acme.test", "hunter2")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionStale))

	assert.False(t, store.Current().Authenticated)
	pair, err := creds.LoadTokens()
	require.NoError(t, err)
	assert.True(t, pair.Empty())
}

func TestStore_Register(t *testing.T) {
	client := &fakeAPI{
		registerFn: func(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
			assert.Equal(t, "Acme HR", req.CompanyName)
			return authResponse("company-1", "company-1"), nil
		},
	}
	store, _ := newTestStore(t, client)

	require.NoError(t, store.Register(context.Background(), api.RegisterRequest{
		Email:       "ana@acme.test",
		Password:    "hunter2",
		CompanyName: "Acme HR",
	}))
	assert.True(t, store.Current().Authenticated)
}

func TestStore_Login_MismatchedTenantForcesLogout(t *testing.T) {
	client := &fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return authResponse("company-1", "company-2"), nil
		},
	}
	store, _ := newTestStore(t, client)

	err := store.Login(context.Background(), "ana@acme.test", "hunter2")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionTenantMismatch))
	assert.False(t, store.Current().Authenticated)
}

func TestStore_SubscribeUnsubscribe(t *testing.T) {
	store, _ := newTestStore(t, &fakeAPI{})

	calls := 0
	unsubscribe := store.Subscribe(func(Session) { calls++ })

	store.SetCompany(&api.Company{ID: "c"})
	assert.Equal(t, 1, calls)

	unsubscribe()
	store.SetCompany(nil)
	assert.Equal(t, 1, calls)
}
