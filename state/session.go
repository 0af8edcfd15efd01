// ABOUTME: Authentication signal the stores bind to
// ABOUTME: Subscribers hear about sign-in, sign-out and user changes
package state

import (
	"sync"

	"github.com/harperreed/keyaccounts/observe"
)

// User identifies the signed-in person.
type User struct {
	ID    string
	Email string
}

// Session carries the current user, or nil when signed out.
type Session struct {
	mu   sync.Mutex
	user *User
	subs observe.Broadcaster[*User]
}

func NewSession() *Session {
	return &Session{}
}

// Current returns a copy of the signed-in user, or nil.
func (s *Session) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// SignIn sets the current user. Signing in as the same user again does not notify.
func (s *Session) SignIn(u User) {
	s.set(&u)
}

func (s *Session) SignOut() {
	s.set(nil)
}

// Subscribe registers fn for user transitions. fn receives nil on sign-out.
func (s *Session) Subscribe(fn func(*User)) func() {
	return s.subs.Subscribe(fn)
}

func (s *Session) set(u *User) {
	s.mu.Lock()
	changed := !sameUser(s.user, u)
	s.user = copyUser(u)
	s.mu.Unlock()

	if changed {
		s.subs.Publish(copyUser(u))
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
