// Package auth turns bearer tokens into actors. Tokens are issued by the
// platform's user service and signed with a shared HS256 secret; this
// service only verifies them.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by access tokens.
type Claims struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId,omitempty"`
	jwt.RegisteredClaims
}

type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Parse verifies the token and builds the actor it describes. The subject
// is the user id.
func (p *TokenParser) Parse(raw string) (actor.Actor, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return actor.Actor{}, ErrInvalidToken
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return actor.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	role, err := actor.ParseRole(claims.Role)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var companyID *kernel.UUID
	if claims.CompanyID != "" && role.IsClient() {
		id, idErr := kernel.UUIDFromString(claims.CompanyID)
		if idErr != nil {
			return actor.Actor{}, fmt.Errorf("%w: companyId: %v", ErrInvalidToken, idErr)
		}
		companyID = &id
	}

	a, err := actor.New(userID, claims.Name, role, companyID)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return a, nil
}

// Issue signs a token for a. Used by tests and local tooling.
func (p *TokenParser) Issue(a actor.Actor, ttl time.Duration) (string, error) {
	claims := Claims{
		Name: a.Name(),
		Role: string(a.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if companyID := a.CompanyID(); companyID != nil {
		claims.CompanyID = companyID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
