// Package auth supplies the caller identity and bearer token attached to
// every medical query.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials identify the caller to the medical backend.
type Credentials struct {
	Token  string
	UserID string
}

// Provider returns the credentials for the current caller. UserID is the
// identity alone, without minting a token.
type Provider interface {
	Credentials(ctx context.Context) (Credentials, error)
	UserID() string
}

// StaticProvider hands out fixed, configured credentials.
type StaticProvider struct {
	creds Credentials
}

func NewStaticProvider(token, userID string) *StaticProvider {
	return &StaticProvider{creds: Credentials{Token: token, UserID: userID}}
}

func (p *StaticProvider) Credentials(ctx context.Context) (Credentials, error) {
	return p.creds, nil
}

func (p *StaticProvider) UserID() string { return p.creds.UserID }

// SignedProvider mints a short-lived HS256 token for a fixed user. The
// backend verifies it with the same shared secret.
type SignedProvider struct {
	secret []byte
	userID string
	ttl    time.Duration
	now    func() time.Time
}

func NewSignedProvider(secret, userID string, ttl time.Duration) *SignedProvider {
	return &SignedProvider{
		secret: []byte(secret),
		userID: userID,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (p *SignedProvider) UserID() string { return p.userID }

func (p *SignedProvider) Credentials(ctx context.Context) (Credentials, error) {
	if len(p.secret) == 0 {
		return Credentials{}, fmt.Errorf("signing secret is empty")
	}

	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   p.userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return Credentials{Token: token, UserID: p.userID}, nil
}
