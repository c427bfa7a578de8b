// Package domain contains core concepts of the sanctuary system.
// This file defines the identity a connection speaks for.
// Identities are immutable once attached to a connection.
package domain

const defaultAnonymousAlias = "Anonymous"

// Identity is either Authenticated or Anonymous.
// The unexported marker keeps the set closed to this package.
type Identity interface {
	ParticipantID() string
	DisplayAlias() string
	IsAnonymous() bool
	identity()
}

// Authenticated is an identity resolved from a valid bearer credential.
type Authenticated struct {
	UserID      string
	Alias       string
	AvatarIndex int
}

func (a Authenticated) ParticipantID() string { return a.UserID }

func (a Authenticated) DisplayAlias() string {
	if a.Alias == "" {
		return a.UserID
	}
	return a.Alias
}

func (a Authenticated) IsAnonymous() bool { return false }
func (a Authenticated) identity()         {}

// Anonymous is fabricated for a connection without credential.
// Its ID is scoped to that connection and never reused.
type Anonymous struct {
	ID string
}

func (a Anonymous) ParticipantID() string { return a.ID }
func (a Anonymous) DisplayAlias() string  { return defaultAnonymousAlias }
func (a Anonymous) IsAnonymous() bool     { return true }
func (a Anonymous) identity()             {}

// Origin describes where a connection came from.
type Origin struct {
	IPAddress string
	UserAgent string
}
