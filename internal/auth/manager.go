package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/NUPS-NASA/exohunt/internal/api"
)

// User-facing failures mapped from known backend conditions.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLoginFailed        = errors.New("login failed")
	ErrEmailTaken         = errors.New("email already registered")
)

// Manager owns the in-memory session and its lifecycle: hydration, login,
// signup, logout, and serialized token refresh. It implements
// api.TokenSource so a Client constructed over it transparently retries
// after a refresh.
type Manager struct {
	client *api.Client // anonymous client for login/signup/refresh
	store  *Store

	mu         sync.Mutex
	session    *Session
	refreshing bool
}

// NewManager returns a Manager over the given anonymous API client and
// disk store. The client must not route its auth through this manager;
// login and refresh calls already skip the retry pass.
func NewManager(client *api.Client, store *Store) *Manager {
	return &Manager{client: client, store: store}
}

// Hydrate loads a persisted session if one exists. A missing session is
// not an error; the manager simply starts signed out.
func (m *Manager) Hydrate() error {
	s, err := m.store.Load()
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
	return nil
}

// Session returns a copy of the current session, or nil when signed out.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.Tokens.AccessToken
}

// Login authenticates and persists the session with the requested
// persistence duration. The email is normalized (trim + lowercase) before
// it reaches the wire.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	res, err := m.client.Login(ctx, api.LoginRequest{Email: normalized, Password: password})
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	return m.install(sessionFromResponse(res, remember))
}

// Signup creates the account and then performs a non-remembering login.
func (m *Manager) Signup(ctx context.Context, email, name, password string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	trimmedName := strings.TrimSpace(name)

	req := api.UserCreate{Email: normalized, Password: password}
	if trimmedName != "" {
		req.Profile = &api.UserProfile{Name: &trimmedName}
	}
	if _, err := m.client.CreateUser(ctx, req); err != nil {
		if api.IsStatus(err, http.StatusConflict) {
			return ErrEmailTaken
		}
		return fmt.Errorf("signup failed: %w", err)
	}
	return m.Login(ctx, normalized, password, false)
}

// Logout clears the in-memory session and both durable stores.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return m.store.Clear()
}

// Refresh implements api.TokenSource. Concurrent callers collapse into
// one in-flight refresh: an observer of an ongoing refresh reports false
// and does not itself retry, which prevents refresh storms. On a 401 the
// session is cleared entirely; other errors propagate.
func (m *Manager) Refresh(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.session == nil || m.session.Tokens.RefreshToken == "" {
		m.mu.Unlock()
		return false, nil
	}
	if m.refreshing {
		m.mu.Unlock()
		return false, nil
	}
	m.refreshing = true
	refreshToken := m.session.Tokens.RefreshToken
	remember := m.session.Remember
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.refreshing = false
		m.mu.Unlock()
	}()

	res, err := m.client.RefreshTokens(ctx, api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			m.mu.Lock()
			m.session = nil
			m.mu.Unlock()
			m.store.Clear()
			return false, nil
		}
		return false, err
	}

	if err := m.install(sessionFromResponse(res, remember)); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateUser replaces the session's user after a post-hydration
// /users/me round-trip, keeping tokens and the remember flag.
func (m *Manager) UpdateUser(u *api.User) error {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return nil
	}
	next := *m.session
	next.User = userFromAPI(*u)
	m.mu.Unlock()
	return m.install(&next)
}

func (m *Manager) install(s *Session) error {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
	return m.store.Save(s)
}

func sessionFromResponse(res *api.LoginResponse, remember bool) *Session {
	return &Session{
		User: userFromAPI(res.User),
		Tokens: Tokens{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
		},
		Remember: remember,
	}
}

func userFromAPI(u api.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.DisplayName(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
