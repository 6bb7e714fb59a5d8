package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"leakbox/internal/wizard"
)

// ErrNotFound is returned when a session id is unknown or has expired.
var ErrNotFound = errors.New("session: not found")

// Store keeps live sessions in an expiring LRU. Capacity caps memory held by
// photo payloads; idle sessions disappear after the TTL. A single store lock
// serializes mutation so Update callbacks see a consistent session.
type Store struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *Session]
	flow  wizard.Flow
}

func NewStore(flow wizard.Flow, maxSessions int, ttl time.Duration) *Store {
	if maxSessions <= 0 {
		maxSessions = 512
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	onEvict := func(id string, _ *Session) {
		log.Printf("session: evicted %s", id)
	}
	return &Store{
		cache: expirable.NewLRU[string, *Session](maxSessions, onEvict, ttl),
		flow:  flow,
	}
}

// Flow returns the wizard flow sessions are created with.
func (st *Store) Flow() wizard.Flow { return st.flow }

// Create starts a new session and returns it.
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := New(st.flow)
	st.cache.Add(s.ID, s)
	return s
}

// Get returns the session for id, or ErrNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Update applies fn to the session under the store lock and refreshes its
// TTL. fn must not retain the session past the call.
func (st *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	st.cache.Add(s.ID, s)
	return s, nil
}

// Delete drops the session if present.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cache.Remove(id)
}

// Len reports how many live sessions the store holds.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Len()
}
