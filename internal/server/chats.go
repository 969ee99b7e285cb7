package server

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Veraticus/trash-scanner/internal/chat"
)

const (
	defaultChatTTL  = 30 * time.Minute
	defaultMaxChats = 200
)

type chatEntry struct {
	lastUsed time.Time
	conv     *chat.Conversation
}

// chatRegistry holds open conversations. Entries idle for longer than ttl are
// dropped, and the least recently used entry goes when the registry is full.
type chatRegistry struct {
	clock   clockwork.Clock
	entries map[string]*chatEntry
	ttl     time.Duration
	max     int
	mu      sync.Mutex
}

func newChatRegistry(clock clockwork.Clock, ttl time.Duration, maxChats int) *chatRegistry {
	if ttl <= 0 {
		ttl = defaultChatTTL
	}
	if maxChats <= 0 {
		maxChats = defaultMaxChats
	}
	return &chatRegistry{
		clock:   clock,
		entries: make(map[string]*chatEntry),
		ttl:     ttl,
		max:     maxChats,
	}
}

func (r *chatRegistry) add(c *chat.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	r.sweepLocked(now)
	for len(r.entries) >= r.max {
		r.evictOldestLocked()
	}
	r.entries[c.ID()] = &chatEntry{conv: c, lastUsed: now}
}

// get returns the conversation and marks it used.
func (r *chatRegistry) get(id string) (*chat.Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	r.sweepLocked(now)
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = now
	return e.conv, true
}

func (r *chatRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *chatRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
}

func (r *chatRegistry) sweepLocked(now time.Time) {
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.entries, id)
		}
	}
}

func (r *chatRegistry) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range r.entries {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID, oldest = id, e.lastUsed
		}
	}
	delete(r.entries, oldestID)
}
