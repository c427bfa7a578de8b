package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"sanctuary/domain"
	"sanctuary/errors"

	"github.com/google/uuid"
)

const (
	bearerPrefix   = "Bearer "
	tokenQueryKey  = "token"
	authCookieName = "auth_token"
)

// Gateway resolves the identity of a connection attempt.
type Gateway struct {
	tokens TokenManager
	log    *slog.Logger
}

func NewGateway(tokens TokenManager, log *slog.Logger) Gateway {
	return Gateway{tokens: tokens, log: log}
}

// Authenticate returns an Authenticated identity for a valid credential and a
// fresh Anonymous one when no credential is presented. A credential that is
// present but invalid is rejected with ErrAuthentication.
func (g Gateway) Authenticate(credential string) (domain.Identity, error) {
	if credential == "" {
		return NewAnonymous(), nil
	}
	claims, err := g.tokens.ValidateToken(credential)
	if err != nil {
		g.log.Debug("Credential rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", errors.ErrAuthentication, err)
	}
	return domain.Authenticated{
		UserID:      claims.UserID,
		Alias:       claims.Alias,
		AvatarIndex: claims.AvatarIndex,
	}, nil
}

// NewAnonymous fabricates a connection scoped identity.
func NewAnonymous() domain.Anonymous {
	return domain.Anonymous{ID: "anon_" + uuid.NewString()}
}

// CredentialFromRequest looks for a bearer credential in the Authorization
// header, then the token query parameter, then the auth cookie.
func CredentialFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}
	if token := r.URL.Query().Get(tokenQueryKey); token != "" {
		return token
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// OriginFromRequest captures the network address and client descriptor.
func OriginFromRequest(r *http.Request) domain.Origin {
	ip := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return domain.Origin{IPAddress: ip, UserAgent: r.UserAgent()}
}
