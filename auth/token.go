package auth

import (
	"fmt"
	"time"

	"sanctuary/domain"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID      string `json:"user_id"`
	Alias       string `json:"alias"`
	AvatarIndex int    `json:"avatar_index"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies bearer credentials with HS256.
type TokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) TokenManager {
	return TokenManager{secret: []byte(secret), issuer: issuer}
}

// GenerateToken creates a signed JWT for an authenticated identity.
func (m TokenManager) GenerateToken(identity domain.Authenticated, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:      identity.UserID,
		Alias:       identity.Alias,
		AvatarIndex: identity.AvatarIndex,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates the signature, issuer and expiration of a JWT string.
func (m TokenManager) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}
