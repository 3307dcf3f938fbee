// Package otp holds the ephemeral one-time-passcode challenges used to
// re-establish identity for password reset. At most one live challenge
// exists per email; issuing a new one overwrites the previous.
package otp

import (
	"context"
	"errors"
	"time"
)

// Window is how long an issued code stays valid.
const Window = 5 * time.Minute

var ErrNotFound = errors.New("otp: no challenge for email")

// Challenge is one issued passcode. Expiry is detected lazily on read,
// not proactively swept.
type Challenge struct {
	Code     string    `json:"code"`
	Expires  time.Time `json:"expires"`
	Verified bool      `json:"verified"`
}

func (ch Challenge) Expired(now time.Time) bool {
	return now.After(ch.Expires)
}

// Store is an expiring keyed challenge store. The memory implementation is
// only suitable for single-process deployments; multi-instance deployments
// must use the redis implementation.
type Store interface {
	Put(ctx context.Context, email string, ch Challenge) error
	Get(ctx context.Context, email string) (Challenge, error)
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}
