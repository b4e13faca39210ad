package mediaclient

import (
	"context"
	"fmt"
	"sync"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnauthenticated means no user is logged in.
	StateUnauthenticated State = iota
	// StateLoading means a credential operation is in flight.
	StateLoading
	// StateAuthenticated means a user is logged in and a token is stored.
	StateAuthenticated
)

// Session owns the current-user value and the token lifecycle. It is the only
// writer of the client's token storage; callers read state through snapshots.
type Session struct {
	client *Client

	mu    sync.Mutex
	state State
	user  *User
}

// NewSession creates a session manager over the client.
func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns a copy of the current user, nil when unauthenticated.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login authenticates and stores the returned token. On failure the session
// stays unauthenticated and the error is surfaced.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.setLoading()

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.reset()
		return err
	}
	return s.establish(resp)
}

// Register creates an account and logs it in, with the same transition shape
// as Login.
func (s *Session) Register(ctx context.Context, params RegisterParams) error {
	s.setLoading()

	resp, err := s.client.Register(ctx, params)
	if err != nil {
		s.reset()
		return err
	}
	return s.establish(resp)
}

// Logout notifies the server best-effort and unconditionally clears the local
// token and user. A failed server call never blocks the teardown; it is
// returned for callers that want to log it.
func (s *Session) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)

	_ = s.client.Storage().Clear()
	s.reset()
	return err
}

// Restore runs once at startup: with a stored token it fetches the current
// user; on any failure the token is dropped and the session stays
// unauthenticated. No retry.
func (s *Session) Restore(ctx context.Context) error {
	if s.client.Storage().Token() == "" {
		s.reset()
		return nil
	}
	s.setLoading()

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		_ = s.client.Storage().Clear()
		s.reset()
		return err
	}

	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// Refresh obtains and stores a fresh token for the authenticated user.
func (s *Session) Refresh(ctx context.Context) error {
	token, err := s.client.RefreshToken(ctx)
	if err != nil {
		return err
	}
	return s.client.Storage().SetToken(token)
}

// UpdateUser merges a partial user locally without a network call, intended
// to reflect a prior server response.
func (s *Session) UpdateUser(patch UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if patch.Username != nil {
		s.user.Username = *patch.Username
	}
	if patch.Email != nil {
		s.user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		s.user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		s.user.LastName = *patch.LastName
	}
}

func (s *Session) establish(resp *AuthResponse) error {
	if err := s.client.Storage().SetToken(resp.Token); err != nil {
		s.reset()
		return fmt.Errorf("store token: %w", err)
	}

	s.mu.Lock()
	s.user = resp.User
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

func (s *Session) setLoading() {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()
}
