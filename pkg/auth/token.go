package auth

import (
	"time"

	"github.com/google/uuid"
)

// Scope limits what a token may be used for.
type Scope string

const (
	// ScopePublic grants read access to public resources only. Issued to
	// API clients that must not act on the account.
	ScopePublic Scope = "public"

	// ScopeComplete grants full account access. Issued on interactive
	// login.
	ScopeComplete Scope = "complete"
)

// Duration is a named token lifetime.
type Duration string

const (
	DurationShort  Duration = "short"  // one hour
	DurationMedium Duration = "medium" // one day
	DurationLong   Duration = "long"   // thirty days
)

// TTL maps the named lifetime to a concrete duration. Unknown values map to
// the short lifetime so a corrupted record can never mint an eternal
// session.
func (d Duration) TTL() time.Duration {
	switch d {
	case DurationMedium:
		return 24 * time.Hour
	case DurationLong:
		return 30 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// Token is a live session credential. The record id itself is the secret;
// there is no separate signed value.
type Token struct {
	ID   uuid.UUID `json:"id"`
	User uuid.UUID `json:"user"`

	Scope    Scope    `json:"scope"`
	Duration Duration `json:"duration"`

	IssuedAt time.Time `json:"issued_at"`

	// Client metadata, recorded for session listings. Context names the
	// issuing surface, e.g. "web" or "cli".
	Browser string `json:"browser"`
	IP      string `json:"ip"`
	Context string `json:"context"`
}

// CollectionName implements store.Record.
func (Token) CollectionName() string { return "access_tokens" }

// RecordID implements store.Record.
func (t Token) RecordID() uuid.UUID { return t.ID }

// ExpiresAt is the instant the token stops resolving.
func (t Token) ExpiresAt() time.Time {
	return t.IssuedAt.Add(t.Duration.TTL())
}

// Expired reports whether the token is past its lifetime. Expiry is checked
// lazily at resolution; nothing sweeps the collection in the background.
func (t Token) Expired() bool {
	return time.Now().After(t.ExpiresAt())
}

// NewToken issues a fresh token for the user.
func NewToken(user uuid.UUID, scope Scope, duration Duration) Token {
	return Token{
		ID:       uuid.New(),
		User:     user,
		Scope:    scope,
		Duration: duration,
		IssuedAt: time.Now().UTC(),
	}
}
