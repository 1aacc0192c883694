package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-only"))
	require.NoError(t, err)
	return signed
}

func TestAccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	s := &Session{Tokens: Tokens{AccessToken: tokenExpiringAt(t, exp)}}

	assert.True(t, s.AccessTokenExpiry().Equal(exp))
	assert.False(t, s.AccessTokenExpired())
}

func TestAccessTokenExpired(t *testing.T) {
	s := &Session{Tokens: Tokens{AccessToken: tokenExpiringAt(t, time.Now().Add(-time.Minute))}}
	assert.True(t, s.AccessTokenExpired())
}

func TestAccessTokenExpiryUnparseable(t *testing.T) {
	for _, access := range []string{"", "opaque-token", "a.b"} {
		s := &Session{Tokens: Tokens{AccessToken: access}}
		assert.True(t, s.AccessTokenExpiry().IsZero(), "token %q", access)
		assert.False(t, s.AccessTokenExpired(), "token %q", access)
	}
}

func TestAccessTokenExpiryNoExpClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7"})
	signed, err := token.SignedString([]byte("test-only"))
	require.NoError(t, err)

	s := &Session{Tokens: Tokens{AccessToken: signed}}
	assert.True(t, s.AccessTokenExpiry().IsZero())
	assert.False(t, s.AccessTokenExpired())
}

func TestParseSnapshot(t *testing.T) {
	valid := `{
		"user": {"id": 7, "email": "newton@example.org", "name": "Newton"},
		"tokens": {"accessToken": "acc", "refreshToken": "ref"},
		"remember": true
	}`

	s, err := ParseSnapshot([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.User.ID)
	assert.True(t, s.Remember)

	cases := []struct {
		name string
		data string
	}{
		{"not json", `{nope`},
		{"missing user id", `{"user":{"email":"a@b"},"tokens":{"accessToken":"a","refreshToken":"r"}}`},
		{"missing email", `{"user":{"id":1},"tokens":{"accessToken":"a","refreshToken":"r"}}`},
		{"missing access token", `{"user":{"id":1,"email":"a@b"},"tokens":{"refreshToken":"r"}}`},
		{"missing refresh token", `{"user":{"id":1,"email":"a@b"},"tokens":{"accessToken":"a"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(tc.data))
			var snapErr *SnapshotError
			require.True(t, errors.As(err, &snapErr))
		})
	}
}
