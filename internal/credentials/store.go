// Package credentials owns the durable client-side storage for the token
// pair and the serialized session snapshot. Auth operations are the only
// writer of tokens; every other component reads through this store.
package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/styrcan/pulse/internal/errors"
)

const (
	tokensFile  = "tokens.json"
	sessionFile = "session.json"
)

// TokenPair holds the opaque access and refresh tokens issued by the
// platform. Tokens never appear in navigable URLs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether no access token is stored.
func (t TokenPair) Empty() bool {
	return t.AccessToken == ""
}

// Store persists credentials under a fixed directory (default ~/.pulse).
type Store struct {
	dir string
}

// NewStore creates a credential store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// SaveTokens writes the token pair as 0600 JSON.
func (s *Store) SaveTokens(pair TokenPair) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "create credential directory", err)
	}

	data, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal token pair", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, tokensFile), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write token pair", err)
	}
	return nil
}

// LoadTokens reads the stored token pair. A missing file yields an empty
// pair, not an error: an absent token simply means "not logged in".
func (s *Store) LoadTokens() (TokenPair, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, tokensFile))
	if err != nil {
		if os.IsNotExist(err) {
			return TokenPair{}, nil
		}
		return TokenPair{}, errors.Wrap(errors.ErrCodeFileReadFailed, "read token pair", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return TokenPair{}, errors.NewFileUnmarshalError(tokensFile, "JSON", err)
	}
	return pair, nil
}

// SaveSession writes the serialized session snapshot.
func (s *Store) SaveSession(blob []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "create credential directory", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, sessionFile), blob, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write session snapshot", err)
	}
	return nil
}

// LoadSession reads the serialized session snapshot. A missing file yields
// (nil, nil).
func (s *Store) LoadSession() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read session snapshot", err)
	}
	return data, nil
}

// Clear removes both the token pair and the session snapshot. Removal is
// atomic with respect to session reset: callers clear tokens and session in
// the same operation. Missing files are not an error.
func (s *Store) Clear() error {
	for _, name := range []string{tokensFile, sessionFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileWriteFailed, "remove "+name, err)
		}
	}
	return nil
}
