//go:generate go run go.uber.org/mock/mockgen -source=host_session.go -destination=../mocks/mock_host_session_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/errors"

	"github.com/dgraph-io/badger/v4"
)

type IHostSessionRepository interface {
	Save(session domain.HostSession) error
	FindByToken(token string) (domain.HostSession, error)
	FindByOwner(sanctuaryID, ownerID string) (domain.HostSession, error)
	Touch(token string, at time.Time) (domain.HostSession, error)
	Deactivate(token string) (domain.HostSession, error)
}

type HostSessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewHostSessionRepository(db *badger.DB, log *slog.Logger) HostSessionRepository {
	return HostSessionRepository{db: db, log: log}
}

// Sessions are stored under "host:{sha256(token)}" so a copy of the store
// does not hold usable credentials. Sessions bound to an owner are also
// indexed under "host_owner:{sanctuary_id}:{owner_id}" pointing to the hash
// of the latest token minted for that owner.
func hostKey(tokenHash string) []byte {
	return []byte("host:" + tokenHash)
}

func hostOwnerKey(sanctuaryID, ownerID string) []byte {
	return []byte(fmt.Sprintf("host_owner:%s:%s", sanctuaryID, ownerID))
}

// Save inserts a new host session. An existing token is never overwritten.
func (r HostSessionRepository) Save(session domain.HostSession) error {
	session.TokenHash = auth.HashHostToken(session.Token)
	err := update(r.db, func(txn *badger.Txn) error {
		if _, err := txn.Get(hostKey(session.TokenHash)); err == nil {
			return fmt.Errorf("%w: token already in use", errors.ErrPersistence)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setJSON(txn, hostKey(session.TokenHash), session); err != nil {
			return err
		}
		if session.OwnerID == "" {
			return nil
		}
		return txn.Set(hostOwnerKey(session.SanctuaryID, session.OwnerID), []byte(session.TokenHash))
	})
	if err != nil {
		r.logFailure("save", session.SanctuaryID, session.Token, err)
	}
	return classify(err, errors.ErrSessionNotFound)
}

func (r HostSessionRepository) FindByToken(token string) (domain.HostSession, error) {
	var session domain.HostSession
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, hostKey(auth.HashHostToken(token)), &session)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		r.logFailure("find_by_token", "", token, err)
	}
	session.Token = token
	return session, classify(err, errors.ErrSessionNotFound)
}

// FindByOwner returns the latest session minted for the owner of a sanctuary.
// Only the token hash is known, the returned Token is empty.
func (r HostSessionRepository) FindByOwner(sanctuaryID, ownerID string) (domain.HostSession, error) {
	var session domain.HostSession
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hostOwnerKey(sanctuaryID, ownerID))
		if err != nil {
			return err
		}
		tokenHash, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, hostKey(string(tokenHash)), &session)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		r.logFailure("find_by_owner", sanctuaryID, "", err)
	}
	return session, classify(err, errors.ErrSessionNotFound)
}

// Touch bumps the last access time of a usable session in a single
// read-modify-write. A session revoked or expired at that point is left
// untouched and ErrAuthorization is returned.
func (r HostSessionRepository) Touch(token string, at time.Time) (domain.HostSession, error) {
	return r.mutate("touch", token, func(s *domain.HostSession) error {
		if !s.IsUsable(at) {
			return fmt.Errorf("%w: host session expired or revoked", errors.ErrAuthorization)
		}
		s.LastAccessedAt = at
		return nil
	})
}

// Deactivate clears the active flag. The record is kept.
func (r HostSessionRepository) Deactivate(token string) (domain.HostSession, error) {
	return r.mutate("deactivate", token, func(s *domain.HostSession) error {
		s.IsActive = false
		return nil
	})
}

func (r HostSessionRepository) mutate(operation, token string, fn func(*domain.HostSession) error) (domain.HostSession, error) {
	var session domain.HostSession
	key := hostKey(auth.HashHostToken(token))
	err := update(r.db, func(txn *badger.Txn) error {
		if err := getJSON(txn, key, &session); err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}
		return setJSON(txn, key, session)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) && !errors.Is(err, errors.ErrAuthorization) {
		r.logFailure(operation, session.SanctuaryID, token, err)
	}
	session.Token = token
	return session, classify(err, errors.ErrSessionNotFound)
}

func (r HostSessionRepository) logFailure(operation, sanctuaryID, token string, err error) {
	r.log.Error("Host session store failure",
		"operation", operation,
		"sanctuary_id", sanctuaryID,
		"token_prefix", domain.TokenPrefix(token),
		"error", err)
}
