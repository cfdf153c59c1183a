package domain

import (
	"time"

	"github.com/yndnr/stakewatch/pkg/token"
)

const (
	// TokenIDLength is the length of a token id.
	TokenIDLength = 20

	// DefaultTokenTTL is how long a token stays valid after issue or extend.
	DefaultTokenTTL = time.Hour
)

// Token is a bearer credential bound to a phone. Expires is an absolute
// Unix timestamp in milliseconds.
type Token struct {
	Phone   string `json:"phone"`
	ID      string `json:"id"`
	Expires int64  `json:"expires"`
}

// NewToken creates a token for phone with a fresh random id, expiring ttl after now.
func NewToken(phone string, now time.Time, ttl time.Duration) (*Token, error) {
	id, err := token.GenerateWithLength(TokenIDLength)
	if err != nil {
		return nil, err
	}
	return &Token{
		Phone:   phone,
		ID:      id,
		Expires: now.Add(ttl).UnixMilli(),
	}, nil
}

// IsExpired reports whether the token is no longer valid at now.
// A token whose expiry equals now is expired.
func (t *Token) IsExpired(now time.Time) bool {
	return t.Expires <= now.UnixMilli()
}

// ValidFor reports whether the token authenticates phone at now.
func (t *Token) ValidFor(phone string, now time.Time) bool {
	return t.Phone == phone && !t.IsExpired(now)
}

// Extend resets the expiry to ttl after now.
func (t *Token) Extend(now time.Time, ttl time.Duration) {
	t.Expires = now.Add(ttl).UnixMilli()
}
