package store

import (
	"errors"
	"sync"
	"time"
)

var ErrAlreadyLocked = errors.New("table is already locked")
var ErrNotLocked = errors.New("no active lock for table")
var ErrNotOwner = errors.New("lock is held by another user")

// Lock is a snapshot of one live hold, as reported by ActiveLocks.
type Lock struct {
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Remaining time.Duration
}

type record struct {
	userID    string
	createdAt time.Time
	expiresAt time.Time
}

// LockStore is an in-memory registry of advisory table locks. Expiry is
// lazy: every operation sweeps expired records before doing its own work,
// under a single mutex hold so check-then-act sequences stay atomic.
type LockStore struct {
	clock Clock

	mu    sync.Mutex
	locks map[string]record
}

// NewLockStore constructs an empty lock registry using the given clock.
func NewLockStore(clock Clock) *LockStore {
	return &LockStore{
		clock: clock,
		locks: make(map[string]record),
	}
}

// Acquire grants userID an exclusive hold on tableID for ttl. A live lock
// on the same table fails with ErrAlreadyLocked; an expired one is
// reclaimed and overwritten.
func (s *LockStore) Acquire(tableID, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweep(now)

	if _, held := s.locks[tableID]; held {
		return ErrAlreadyLocked
	}

	s.locks[tableID] = record{
		userID:    userID,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Release removes the lock on tableID if userID holds it. It fails with
// ErrNotLocked when no live lock exists and ErrNotOwner when the lock
// belongs to someone else.
func (s *LockStore) Release(tableID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(s.clock.Now())

	rec, held := s.locks[tableID]
	if !held {
		return ErrNotLocked
	}
	if rec.userID != userID {
		return ErrNotOwner
	}

	delete(s.locks, tableID)
	return nil
}

// IsLocked reports whether a live lock exists for tableID.
func (s *LockStore) IsLocked(tableID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(s.clock.Now())

	_, held := s.locks[tableID]
	return held
}

// ActiveLocks returns a snapshot of every live lock keyed by table.
func (s *LockStore) ActiveLocks() map[string]Lock {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweep(now)

	out := make(map[string]Lock, len(s.locks))
	for id, rec := range s.locks {
		remaining := rec.expiresAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		out[id] = Lock{
			UserID:    rec.userID,
			CreatedAt: rec.createdAt,
			ExpiresAt: rec.expiresAt,
			Remaining: remaining,
		}
	}
	return out
}

// ActiveCount returns the number of live locks.
func (s *LockStore) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(s.clock.Now())
	return len(s.locks)
}

// sweep drops every record whose expiry has passed. Callers must hold mu.
func (s *LockStore) sweep(now time.Time) {
	for id, rec := range s.locks {
		if !rec.expiresAt.After(now) {
			delete(s.locks, id)
		}
	}
}
