// Package auth owns the client-side auth session: the {user, tokens,
// remember} bundle, its durable persistence, and the login/refresh
// lifecycle against the backend.
package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the session's view of the authenticated account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tokens is the bearer token pair issued by the backend.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the client-held auth state. Remember selects which durable
// store the snapshot is written to.
type Session struct {
	User     User   `json:"user"`
	Tokens   Tokens `json:"tokens"`
	Remember bool   `json:"remember"`
}

// AccessTokenExpiry returns the exp claim of the access token, parsed
// without signature verification. The client only needs it for display
// and for deciding when a proactive refresh is worthwhile. Returns the
// zero time when the token carries no usable expiry.
func (s *Session) AccessTokenExpiry() time.Time {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.Tokens.AccessToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// AccessTokenExpired reports whether the access token's exp claim is in
// the past. Tokens without a parseable expiry are never considered
// expired; the transport's 401 handling covers them.
func (s *Session) AccessTokenExpired() bool {
	exp := s.AccessTokenExpiry()
	return !exp.IsZero() && time.Now().After(exp)
}

// SnapshotError reports why a persisted session snapshot was rejected
// during hydration.
type SnapshotError struct {
	Reason string
}

func (e *SnapshotError) Error() string {
	return "invalid session snapshot: " + e.Reason
}

// ParseSnapshot validates and decodes a persisted session snapshot.
// Anything structurally unsound is rejected with a *SnapshotError so the
// caller can discard the stored entry.
func ParseSnapshot(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &SnapshotError{Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if s.User.ID <= 0 {
		return nil, &SnapshotError{Reason: "missing user id"}
	}
	if s.User.Email == "" {
		return nil, &SnapshotError{Reason: "missing user email"}
	}
	if s.Tokens.AccessToken == "" {
		return nil, &SnapshotError{Reason: "missing access token"}
	}
	if s.Tokens.RefreshToken == "" {
		return nil, &SnapshotError{Reason: "missing refresh token"}
	}
	return &s, nil
}
