package services

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/errors"
	"sanctuary/repositories"
	"sanctuary/runtime"

	"github.com/google/uuid"
)

// HostGrant is the outcome of a successful host resolution.
type HostGrant struct {
	Session   domain.HostSession
	Sanctuary domain.Sanctuary
	Minted    bool
}

// NewSanctuary describes a sanctuary created by its owner.
type NewSanctuary struct {
	Topic       string        `validate:"required,max=200"`
	Description string        `validate:"max=2000"`
	Emoji       string        `validate:"max=16"`
	TTL         time.Duration `validate:"required,gt=0"`
}

type IHostService interface {
	Resolve(sanctuaryID, token string, identity domain.Identity, origin domain.Origin) (HostGrant, error)
	VerifyToken(token string) (HostGrant, error)
	RecoveryLink(sanctuaryID, token string, identity domain.Identity) (string, error)
	CreateSanctuary(owner domain.Authenticated, input NewSanctuary, origin domain.Origin) (HostGrant, error)
	Revoke(token string) error
}

// HostService is the Host Session Authority.
//
// Sessions are checked lazily: nothing sweeps them, an expired or revoked
// session simply stops resolving. Minting for an owner is serialized per
// (sanctuary, owner) so concurrent token-less joins share one session.
//
// The store only keeps token hashes. The raw token of each owner's latest
// session is remembered in memory so that session can be handed out again,
// after a restart the owner is minted a fresh one.
type HostService struct {
	log           *slog.Logger
	sessions      repositories.IHostSessionRepository
	sanctuaries   repositories.ISanctuaryRepository
	locks         *runtime.KeyedMutex
	ownerTokens   sync.Map
	publicBaseURL string
}

func NewHostService(
	log *slog.Logger,
	sessions repositories.IHostSessionRepository,
	sanctuaries repositories.ISanctuaryRepository,
	publicBaseURL string,
) *HostService {
	return &HostService{
		log:           log,
		sessions:      sessions,
		sanctuaries:   sanctuaries,
		locks:         runtime.NewKeyedMutex(),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Resolve grants host access to a sanctuary, in order:
//  1. a presented token naming a usable session of this sanctuary,
//  2. the authenticated owner of a live sanctuary, minting a session if needed,
//  3. otherwise ErrAuthorization.
//
// A presented token that names an expired, revoked or foreign session fails
// outright and never falls back to the owner path.
func (s *HostService) Resolve(sanctuaryID, token string, identity domain.Identity, origin domain.Origin) (HostGrant, error) {
	now := time.Now().UTC()

	if token != "" {
		session, err := s.sessions.FindByToken(token)
		switch {
		case err == nil:
			return s.refresh(session, sanctuaryID, now)
		case !errors.Is(err, errors.ErrSessionNotFound):
			return HostGrant{}, err
		}
	}

	if identity == nil || identity.IsAnonymous() {
		return HostGrant{}, fmt.Errorf("%w: no valid host token", errors.ErrAuthorization)
	}

	sanctuary, err := s.sanctuaries.Get(sanctuaryID)
	if errors.Is(err, errors.ErrSessionNotFound) {
		return HostGrant{}, fmt.Errorf("%w: sanctuary not found", errors.ErrAuthorization)
	}
	if err != nil {
		return HostGrant{}, err
	}
	if sanctuary.OwnerID != identity.ParticipantID() {
		return HostGrant{}, fmt.Errorf("%w: not the sanctuary owner", errors.ErrAuthorization)
	}
	if !sanctuary.IsLive(now) {
		return HostGrant{}, fmt.Errorf("%w: sanctuary expired", errors.ErrAuthorization)
	}
	return s.mintForOwner(sanctuary, token, origin, now)
}

func (s *HostService) refresh(session domain.HostSession, sanctuaryID string, now time.Time) (HostGrant, error) {
	if session.SanctuaryID != sanctuaryID {
		s.log.Warn("Host token presented for another sanctuary",
			"sanctuary_id", sanctuaryID, "token_prefix", session.TokenPrefix(), "operation", "resolve")
		return HostGrant{}, fmt.Errorf("%w: token does not match sanctuary", errors.ErrAuthorization)
	}
	if !session.IsUsable(now) {
		return HostGrant{}, fmt.Errorf("%w: host session expired or revoked", errors.ErrAuthorization)
	}
	sanctuary, err := s.sanctuaries.Get(sanctuaryID)
	if errors.Is(err, errors.ErrSessionNotFound) {
		return HostGrant{}, fmt.Errorf("%w: sanctuary not found", errors.ErrAuthorization)
	}
	if err != nil {
		return HostGrant{}, err
	}
	touched, err := s.sessions.Touch(session.Token, now)
	if err != nil {
		return HostGrant{}, err
	}
	return HostGrant{Session: touched, Sanctuary: sanctuary}, nil
}

// mintForOwner reuses the owner's usable session unless another well formed
// token was supplied, otherwise persists a new one expiring with the sanctuary.
func (s *HostService) mintForOwner(sanctuary domain.Sanctuary, requested string, origin domain.Origin, now time.Time) (HostGrant, error) {
	key := ownerKey(sanctuary.ID, sanctuary.OwnerID)
	unlock := s.locks.Lock(key)
	defer unlock()

	if !auth.IsWellFormedHostToken(requested) {
		requested = ""
	}

	existing, err := s.sessions.FindByOwner(sanctuary.ID, sanctuary.OwnerID)
	if err != nil && !errors.Is(err, errors.ErrSessionNotFound) {
		return HostGrant{}, err
	}
	if err == nil && existing.IsUsable(now) {
		if token, ok := s.ownerToken(key, requested, existing); ok {
			touched, err := s.sessions.Touch(token, now)
			if err == nil {
				s.ownerTokens.Store(key, token)
				return HostGrant{Session: touched, Sanctuary: sanctuary}, nil
			}
			if !errors.Is(err, errors.ErrAuthorization) {
				return HostGrant{}, err
			}
		}
	}

	token := requested
	if token == "" {
		if token, err = auth.NewHostToken(); err != nil {
			return HostGrant{}, errors.Wrap(errors.ErrPersistence, err)
		}
	}

	session := domain.HostSession{
		SanctuaryID:    sanctuary.ID,
		Token:          token,
		OwnerID:        sanctuary.OwnerID,
		IPAddress:      origin.IPAddress,
		UserAgent:      origin.UserAgent,
		CreatedAt:      now,
		ExpiresAt:      sanctuary.ExpiresAt,
		LastAccessedAt: now,
		IsActive:       true,
	}
	if err = s.sessions.Save(session); err != nil {
		return HostGrant{}, err
	}
	s.ownerTokens.Store(key, token)
	s.log.Info("Host session minted",
		"sanctuary_id", sanctuary.ID, "token_prefix", session.TokenPrefix(), "operation", "mint")
	return HostGrant{Session: session, Sanctuary: sanctuary, Minted: true}, nil
}

// ownerToken returns the raw token of the owner's existing session when it is
// known, either supplied by the caller or remembered from an earlier mint.
func (s *HostService) ownerToken(key, requested string, existing domain.HostSession) (string, bool) {
	token := requested
	if token == "" {
		cached, ok := s.ownerTokens.Load(key)
		if !ok {
			return "", false
		}
		token = cached.(string)
	}
	return token, auth.HostTokenMatches(token, existing.TokenHash)
}

func ownerKey(sanctuaryID, ownerID string) string {
	return sanctuaryID + ":" + ownerID
}

// VerifyToken returns the sanctuary a usable token grants access to.
func (s *HostService) VerifyToken(token string) (HostGrant, error) {
	session, err := s.sessions.FindByToken(token)
	if err != nil {
		return HostGrant{}, err
	}
	if !session.IsUsable(time.Now()) {
		return HostGrant{}, fmt.Errorf("%w: host session expired or revoked", errors.ErrAuthorization)
	}
	sanctuary, err := s.sanctuaries.Get(session.SanctuaryID)
	if err != nil {
		return HostGrant{}, err
	}
	return HostGrant{Session: session, Sanctuary: sanctuary}, nil
}

// RecoveryLink builds a shareable URL embedding a usable host token.
// Without a token, the authenticated owner gets a link to their session.
func (s *HostService) RecoveryLink(sanctuaryID, token string, identity domain.Identity) (string, error) {
	var (
		grant HostGrant
		err   error
	)
	if token != "" {
		grant, err = s.VerifyToken(token)
		if err == nil && grant.Session.SanctuaryID != sanctuaryID {
			err = fmt.Errorf("%w: token does not match sanctuary", errors.ErrAuthorization)
		}
	} else {
		grant, err = s.Resolve(sanctuaryID, "", identity, domain.Origin{})
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/sanctuary/recover/%s?token=%s",
		s.publicBaseURL, url.PathEscape(sanctuaryID), url.QueryEscape(grant.Session.Token)), nil
}

// CreateSanctuary persists a sanctuary and mints its owner's first session.
func (s *HostService) CreateSanctuary(owner domain.Authenticated, input NewSanctuary, origin domain.Origin) (HostGrant, error) {
	if err := auth.ValidateCommand(input); err != nil {
		return HostGrant{}, err
	}
	now := time.Now().UTC()
	sanctuary := domain.Sanctuary{
		ID:          uuid.NewString(),
		Topic:       input.Topic,
		Description: input.Description,
		Emoji:       input.Emoji,
		OwnerID:     owner.UserID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(input.TTL),
		IsActive:    true,
	}
	if err := s.sanctuaries.Create(sanctuary); err != nil {
		return HostGrant{}, err
	}
	return s.mintForOwner(sanctuary, "", origin, now)
}

// Revoke deactivates a host session. The next lookup of its token fails.
func (s *HostService) Revoke(token string) error {
	session, err := s.sessions.Deactivate(token)
	if err != nil {
		return err
	}
	s.ownerTokens.CompareAndDelete(ownerKey(session.SanctuaryID, session.OwnerID), token)
	s.log.Info("Host session revoked",
		"sanctuary_id", session.SanctuaryID, "token_prefix", session.TokenPrefix(), "operation", "revoke")
	return nil
}
