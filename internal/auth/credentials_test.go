package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider("your-token-here", "test-user")

	creds, err := p.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "your-token-here", creds.Token)
	assert.Equal(t, "test-user", creds.UserID)
	assert.Equal(t, "test-user", p.UserID())
}

func TestSignedProvider_TokenVerifiesWithSecret(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	p := NewSignedProvider("SECRET_KEY", "patient-42", time.Hour)
	p.now = func() time.Time { return issued }

	creds, err := p.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "patient-42", creds.UserID)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(creds.Token, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte("SECRET_KEY"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "patient-42", claims.Subject)
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestSignedProvider_WrongSecretRejected(t *testing.T) {
	p := NewSignedProvider("SECRET_KEY", "patient-42", time.Hour)

	creds, err := p.Credentials(context.Background())
	require.NoError(t, err)

	_, err = jwt.Parse(creds.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestSignedProvider_EmptySecret(t *testing.T) {
	p := NewSignedProvider("", "patient-42", time.Hour)

	_, err := p.Credentials(context.Background())
	assert.Error(t, err)
}

func TestSignedProvider_UserIDDoesNotSign(t *testing.T) {
	p := NewSignedProvider("", "patient-42", time.Hour)
	p.now = func() time.Time {
		t.Fatal("UserID must not mint a token")
		return time.Time{}
	}

	assert.Equal(t, "patient-42", p.UserID())
}
