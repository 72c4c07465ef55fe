// Package session holds the authentication context for backend calls. It is
// passed explicitly to the components that need it instead of being read
// from ambient state, so favorite logic stays testable without a browser
// environment.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session carries the bearer token issued by the auth collaborator.
// Authentication itself is out of scope here; the session only gates whether
// favorite operations are attempted at all.
type Session struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

func New(token string) *Session {
	return &Session{token: token, now: time.Now}
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a usable token is present. JWT-shaped tokens
// with an expiry claim in the past count as absent; opaque tokens are taken
// at face value and left for the backend to reject.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return false
	}

	token, _, err := jwt.NewParser().ParseUnverified(s.token, jwt.MapClaims{})
	if err != nil {
		return true // opaque token
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(s.now())
}
