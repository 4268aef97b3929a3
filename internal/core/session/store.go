// Package session implements the operator session core: the identity store
// with its permission evaluator, the inactivity monitor state machine, and
// the lifecycle controller that orchestrates login, logout, restore and
// forced invalidation against the remote auth service.
package session

import (
	"strings"
	"sync"

	"github.com/cobros/console-gateway/internal/core/domain"
)

// Store holds the current authenticated identity, if any. At most one session
// exists per gateway process. Only the Controller writes to the store; every
// other component reads.
//
// All evaluator methods are pure reads over the cached snapshot and are safe
// to call at arbitrary frequency.
type Store struct {
	mu       sync.RWMutex
	identity *domain.Identity
}

func NewStore() *Store {
	return &Store{}
}

// Identity returns the current identity or nil when no session exists.
func (s *Store) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// IsAuthenticated is computed from the identity on every call so it can never
// disagree with Identity().
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// HasPermission reports whether the snapshot maps name to true. Missing
// identity, missing key and non-true values all evaluate to false.
func (s *Store) HasPermission(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return false
	}
	return s.identity.Permissions[name]
}

// HasAnyPermission reports whether at least one of names is granted.
// Always false without an identity; false for an empty list.
func (s *Store) HasAnyPermission(names ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return false
	}
	for _, n := range names {
		if s.identity.Permissions[n] {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every name is granted. Always false
// without an identity; vacuously true for an empty list when an identity
// is present.
func (s *Store) HasAllPermissions(names ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return false
	}
	for _, n := range names {
		if !s.identity.Permissions[n] {
			return false
		}
	}
	return true
}

// HasRole matches role names case-insensitively against the identity's roles.
func (s *Store) HasRole(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return false
	}
	for _, r := range s.identity.Roles {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

// HasCarteraAccess reports whether the identity may access the given
// portfolio.
func (s *Store) HasCarteraAccess(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return false
	}
	for _, c := range s.identity.Carteras {
		if c == id {
			return true
		}
	}
	return false
}

// set replaces the identity in a single atomic swap. There is never a
// partially-updated identity visible to readers.
func (s *Store) set(identity *domain.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
}

// clear removes the identity.
func (s *Store) clear() {
	s.set(nil)
}
