// Package session keeps the bounded per-client conversation history.
package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/upb/lenny-lens/models"
)

// Defaults applied when Config leaves a field unset.
const (
	DefaultMaxTurns   = 5
	DefaultTTL        = 24 * time.Hour
	DefaultMaxClients = 10000
)

// Config holds session store settings
type Config struct {
	MaxTurns   int
	TTL        time.Duration
	MaxClients int
}

type conversation struct {
	turns []models.Turn
}

// Store holds at most MaxTurns turns per client. Clients beyond MaxClients
// are evicted least-recently-seen first.
type Store struct {
	mu       sync.Mutex
	clients  *simplelru.LRU[string, *conversation]
	maxTurns int
	ttl      time.Duration
}

// NewStore creates a new Store instance
func NewStore(cfg Config) (*Store, error) {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultMaxClients
	}
	clients, err := simplelru.NewLRU[string, *conversation](cfg.MaxClients, nil)
	if err != nil {
		return nil, err
	}
	return &Store{clients: clients, maxTurns: cfg.MaxTurns, ttl: cfg.TTL}, nil
}

// MaxTurns returns the per-client turn cap.
func (s *Store) MaxTurns() int {
	return s.maxTurns
}

// Turns returns a copy of the client's turns, oldest first.
func (s *Store) Turns(clientID string) []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients.Get(clientID)
	if !ok || len(c.turns) == 0 {
		return nil
	}
	out := make([]models.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Append adds a turn, keeps only the newest MaxTurns, and returns the
// resulting length.
func (s *Store) Append(clientID string, turn models.Turn) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients.Get(clientID)
	if !ok {
		c = &conversation{}
		s.clients.Add(clientID, c)
	}
	c.turns = append(c.turns, turn)
	if over := len(c.turns) - s.maxTurns; over > 0 {
		c.turns = append([]models.Turn(nil), c.turns[over:]...)
	}
	return len(c.turns)
}

// Clear empties the client's conversation.
func (s *Store) Clear(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients.Remove(clientID)
}

// Sweep drops turns older than the TTL for every known client and forgets
// clients left with none. It returns the number of turns removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.ttl)
	removed := 0
	for _, key := range s.clients.Keys() {
		c, ok := s.clients.Peek(key)
		if !ok {
			continue
		}
		kept := c.turns[:0]
		for _, t := range c.turns {
			if t.Timestamp.After(cutoff) {
				kept = append(kept, t)
			}
		}
		removed += len(c.turns) - len(kept)
		c.turns = kept
		if len(kept) == 0 {
			s.clients.Remove(key)
		}
	}
	return removed
}

// Len returns the number of clients with a conversation.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients.Len()
}
