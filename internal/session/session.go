// Package session holds the client-side record of the authenticated
// identity and its company, persists it across restarts, and enforces the
// session consistency rules.
package session

import (
	"encoding/json"

	"github.com/styrcan/pulse/internal/api"
	"github.com/styrcan/pulse/internal/errors"
)

// Session is the client-held snapshot of the current identity and tenant
// context.
//
// Invariants:
//   - Authenticated is true exactly when User is non-nil.
//   - Once hydrated, if User and Company are both set then
//     User.CompanyID == Company.ID; a violation forces logout.
type Session struct {
	User          *api.User
	Company       *api.Company
	Authenticated bool
	Hydrated      bool
}

// persistedSession is the durable snapshot written alongside the token
// pair. Hydrated is runtime-only and never persisted.
type persistedSession struct {
	User          *api.User    `json:"user,omitempty"`
	Company       *api.Company `json:"company,omitempty"`
	Authenticated bool         `json:"authenticated"`
}

// marshalSnapshot serializes the persistable part of a session.
func marshalSnapshot(s Session) ([]byte, error) {
	blob, err := json.Marshal(persistedSession{
		User:          s.User,
		Company:       s.Company,
		Authenticated: s.Authenticated,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSessionPersistFailed, "marshal session snapshot", err)
	}
	return blob, nil
}

// unmarshalSnapshot restores a persisted session snapshot.
func unmarshalSnapshot(blob []byte) (persistedSession, error) {
	var snap persistedSession
	if err := json.Unmarshal(blob, &snap); err != nil {
		return persistedSession{}, errors.Wrap(errors.ErrCodeSessionRestoreFailed, "unmarshal session snapshot", err)
	}
	return snap, nil
}
