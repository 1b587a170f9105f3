// Package auth models the authentication collaborator: a push-based
// stream of "current identity or none" with interactive sign-in and
// sign-out actions. In a self-hosted deployment the identity itself is
// configured; what matters to the rest of the system is the stream.
package auth

import (
	"errors"
	"sync"
)

// Identity is a signed-in user as the rest of the system sees it. The
// remote document store is keyed by UserID.
type Identity struct {
	UserID      string `json:"userId"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Listener receives the identity on every transition; nil means
// signed out.
type Listener func(*Identity)

// Provider is the inbound port for authentication state.
type Provider interface {
	// Subscribe registers a listener and immediately delivers the current
	// value, then every transition. The returned func unsubscribes.
	Subscribe(fn Listener) func()
	// Current returns the identity, or nil when signed out.
	Current() *Identity
	// SignIn performs the interactive sign-in action.
	SignIn() error
	// SignOut clears the identity.
	SignOut()
}

// ErrNoIdentity is returned by SignIn when no identity is configured.
var ErrNoIdentity = errors.New("no identity configured")

// Session is the config-driven Provider: one household identity, toggled
// between signed-in and anonymous by the sign-in/out actions.
type Session struct {
	mu        sync.Mutex
	identity  Identity
	signedIn  bool
	listeners map[int]Listener
	nextID    int
}

var _ Provider = (*Session)(nil)

// NewSession creates a signed-out session for the given identity. An
// empty UserID leaves the session permanently anonymous.
func NewSession(identity Identity) *Session {
	return &Session{identity: identity, listeners: map[int]Listener{}}
}

func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	cur := s.currentLocked()
	s.mu.Unlock()

	fn(cur)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() *Identity {
	if !s.signedIn {
		return nil
	}
	id := s.identity
	return &id
}

func (s *Session) SignIn() error {
	s.mu.Lock()
	if s.identity.UserID == "" {
		s.mu.Unlock()
		return ErrNoIdentity
	}
	if s.signedIn {
		s.mu.Unlock()
		return nil
	}
	s.signedIn = true
	s.notifyLocked()
	return nil
}

func (s *Session) SignOut() {
	s.mu.Lock()
	if !s.signedIn {
		s.mu.Unlock()
		return
	}
	s.signedIn = false
	s.notifyLocked()
}

// notifyLocked snapshots listeners and releases the lock before calling
// them, so a listener may re-enter Current.
func (s *Session) notifyLocked() {
	cur := s.currentLocked()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(cur)
	}
}
