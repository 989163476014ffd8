package storage

import (
	"sync"
	"time"

	"Connectify/module/user/model"
)

// PresenceEntry is the live view of one connected user.
type PresenceEntry struct {
	ConnID   string
	Status   string
	LastSeen int64
}

// Presence tracks which users currently hold a live connection and what
// status they advertise. State lives in process memory only; a restart
// empties it, which matches reality since every socket dropped too.
type Presence struct {
	mu    sync.RWMutex
	users map[string]*PresenceEntry
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]*PresenceEntry)}
}

// Connect records a fresh connection. A later connection for the same
// user replaces the previous entry, so the newest socket owns the
// presence slot.
func (p *Presence) Connect(userID, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[userID] = &PresenceEntry{
		ConnID:   connID,
		Status:   model.StatusOnline,
		LastSeen: time.Now().UnixMilli(),
	}
}

// SetStatus updates the advertised status of a connected user. Returns
// false when the user has no live entry.
func (p *Presence) SetStatus(userID, status string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.users[userID]
	if !ok {
		return false
	}
	e.Status = status
	e.LastSeen = time.Now().UnixMilli()
	return true
}

// Disconnect drops the entry, but only when the departing connection
// still owns the slot. A stale connection closing after a reconnect
// must not erase the live one.
func (p *Presence) Disconnect(userID, connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.users[userID]
	if !ok || e.ConnID != connID {
		return false
	}
	delete(p.users, userID)
	return true
}

// Get returns a copy of the entry for userID, or nil when offline.
func (p *Presence) Get(userID string) *PresenceEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.users[userID]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// Online reports whether the user holds a live connection.
func (p *Presence) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.users[userID]
	return ok
}

// OnlineUsers snapshots the ids of every connected user.
func (p *Presence) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.users))
	for id := range p.users {
		out = append(out, id)
	}
	return out
}

// Typing tracks who is composing in which channel. Entries are added
// and removed only by explicit start/stop events or by the owning
// connection going away; there is no timer-based expiry.
type Typing struct {
	mu       sync.RWMutex
	channels map[string]map[string]struct{} // channelID -> set of userIDs
}

func NewTyping() *Typing {
	return &Typing{channels: make(map[string]map[string]struct{})}
}

func (t *Typing) Start(channelID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.channels[channelID]
	if !ok {
		set = make(map[string]struct{})
		t.channels[channelID] = set
	}
	set[userID] = struct{}{}
}

func (t *Typing) Stop(channelID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if set, ok := t.channels[channelID]; ok {
		delete(set, userID)
		if len(set) == 0 {
			delete(t.channels, channelID)
		}
	}
}

// StopAll clears the user from every channel and returns the channel
// ids that were affected, so the gateway can emit stop notices on
// disconnect.
func (t *Typing) StopAll(userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var affected []string
	for ch, set := range t.channels {
		if _, ok := set[userID]; ok {
			delete(set, userID)
			affected = append(affected, ch)
			if len(set) == 0 {
				delete(t.channels, ch)
			}
		}
	}
	return affected
}

// In returns the users currently typing in channelID.
func (t *Typing) In(channelID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.channels[channelID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
