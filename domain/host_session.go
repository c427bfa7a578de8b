package domain

import "time"

// HostSession grants privileged access to a sanctuary to whoever presents Token.
// Token is never persisted, only TokenHash is. A session loaded by owner
// rather than by token therefore has an empty Token.
//
// Expiry is lazy: nothing sweeps expired sessions, IsUsable is checked at lookup.
// IsActive may be cleared by an administrative revocation and is never set back.
type HostSession struct {
	SanctuaryID    string    `json:"sanctuary_id"`
	Token          string    `json:"-"`
	TokenHash      string    `json:"token_hash"`
	OwnerID        string    `json:"owner_id,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	IsActive       bool      `json:"is_active"`
}

// IsUsable reports whether the session can still authorize a host at now.
func (h HostSession) IsUsable(now time.Time) bool {
	return h.IsActive && now.Before(h.ExpiresAt)
}

// TokenPrefix returns a loggable prefix of the token, or of its hash when
// the raw token is unknown.
func (h HostSession) TokenPrefix() string {
	if h.Token == "" {
		return TokenPrefix(h.TokenHash)
	}
	return TokenPrefix(h.Token)
}

// TokenPrefix never returns more than 8 characters of a secret.
func TokenPrefix(token string) string {
	const n = 8
	if len(token) <= n {
		return token
	}
	return token[:n]
}
