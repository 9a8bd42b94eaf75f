package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/db"
)

// Session is a Provider scoped to a single session. Signed-in users are
// recorded in the users table.
type Session struct {
	issuer *Issuer
	users  db.Store

	mu        sync.Mutex
	uid       string
	nextID    int
	listeners map[int]func(string)
}

var _ Provider = (*Session)(nil)

func NewSession(issuer *Issuer, users db.Store) *Session {
	return &Session{issuer: issuer, users: users, listeners: make(map[int]func(string))}
}

// Restore re-attaches a user whose session token was already verified.
func (s *Session) Restore(uid string) {
	s.setUser(uid)
}

// CurrentUser returns the signed-in user id or "".
func (s *Session) CurrentUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

// Token issues a bearer token for the signed-in user.
func (s *Session) Token() (string, error) {
	uid := s.CurrentUser()
	if uid == "" {
		return "", fmt.Errorf("%w: no user signed in", ErrAuthentication)
	}
	return s.issuer.Issue(uid)
}

func (s *Session) OnUserChanged(fn func(uid string)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.uid
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) SignInAnonymously(ctx context.Context) (string, error) {
	uid := uuid.NewString()
	if _, err := s.users.CreateUser(ctx, uid, true); err != nil {
		return "", fmt.Errorf("%w: anonymous sign-in: %v", ErrAuthentication, err)
	}
	log.Info().Str("user", uid).Msg("anonymous sign-in")
	s.setUser(uid)
	return uid, nil
}

func (s *Session) SignInWithToken(ctx context.Context, token string) (string, error) {
	uid, err := s.issuer.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if _, err := s.users.CreateUser(ctx, uid, false); err != nil {
		return "", fmt.Errorf("%w: recording user: %v", ErrAuthentication, err)
	}
	log.Info().Str("user", uid).Msg("token sign-in")
	s.setUser(uid)
	return uid, nil
}

// setUser notifies listeners outside the lock; a listener may call back
// into the session.
func (s *Session) setUser(uid string) {
	s.mu.Lock()
	if s.uid == uid {
		s.mu.Unlock()
		return
	}
	s.uid = uid
	listeners := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(uid)
	}
}
