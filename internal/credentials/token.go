package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/styrcan/pulse/internal/errors"
)

// TokenExpiry extracts the expiry time from an access token without
// verifying its signature. The token is opaque to this client; the server
// is the authority. The parse is only used for display ("expires in 40m")
// and to skip doomed realtime connects.
func TokenExpiry(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.NewTokenMissingError()
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeAuthTokenMalformed, "parse access token", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New(errors.ErrCodeAuthTokenMalformed, "access token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

// TokenExpired reports whether the access token is past its expiry claim.
// Tokens that cannot be parsed are treated as expired.
func TokenExpired(raw string, now time.Time) bool {
	exp, err := TokenExpiry(raw)
	if err != nil {
		return true
	}
	return now.After(exp)
}
