// Package store is the client-side state of one signed-in session: the
// user's profile and their logs, newest first.
//
// The store is deliberately dumb. It never talks to the server and never
// validates; the syncer decides what gets in. Every mutation replaces the
// snapshot under a lock, so a reader always sees a consistent pair of
// profile and logs.
package store

import (
	"slices"
	"sync"

	"github.com/sakif/caloriesnap/internal/model"
)

// Snapshot is an immutable copy of the state at one point in time.
type Snapshot struct {
	Profile *model.Profile // nil when no profile is loaded
	Logs    []model.Log    // newest first
}

// Store holds the session state. The zero value is ready to use.
type Store struct {
	mu          sync.RWMutex
	profile     *model.Profile
	logs        []model.Log
	subscribers map[int]func(Snapshot)
	nextID      int
}

func New() *Store {
	return &Store{}
}

// SetProfile replaces the profile wholesale.
func (s *Store) SetProfile(p model.Profile) {
	s.mutate(func() {
		s.profile = &p
	})
}

// SetLogs replaces the whole list. No merge: the last call wins.
func (s *Store) SetLogs(logs []model.Log) {
	s.mutate(func() {
		s.logs = slices.Clone(logs)
	})
}

// AddLog prepends l. Duplicated IDs are kept.
func (s *Store) AddLog(l model.Log) {
	s.mutate(func() {
		next := make([]model.Log, 0, len(s.logs)+1)
		next = append(next, l)
		s.logs = append(next, s.logs...)
	})
}

// RemoveLog drops every log with the given ID. Absent IDs are a no-op.
func (s *Store) RemoveLog(id string) {
	s.mutate(func() {
		s.logs = slices.DeleteFunc(slices.Clone(s.logs), func(l model.Log) bool {
			return l.ID == id
		})
	})
}

// Reset forgets everything, e.g. on logout.
func (s *Store) Reset() {
	s.mutate(func() {
		s.profile = nil
		s.logs = nil
	})
}

// Profile returns a copy of the loaded profile.
func (s *Store) Profile() (model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return model.Profile{}, false
	}
	return *s.profile, true
}

// Logs returns a copy of the logs, newest first. Never nil.
func (s *Store) Logs() []model.Log {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLogs(s.logs)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called with the new snapshot after every
// mutation. Callbacks run synchronously on the mutating goroutine, outside
// the lock. The returned func unregisters fn.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribers == nil {
		s.subscribers = make(map[int]func(Snapshot))
	}
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) mutate(apply func()) {
	s.mu.Lock()
	apply()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Logs: cloneLogs(s.logs)}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	return snap
}

func cloneLogs(logs []model.Log) []model.Log {
	out := make([]model.Log, len(logs))
	copy(out, logs)
	return out
}
