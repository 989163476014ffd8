package chat

import "sync"

// Registry indexes live clients by connection, by user and by channel
// topic. Subscription to a channel topic happens only through explicit
// join events; connecting alone delivers nothing.
type Registry struct {
	mu        sync.RWMutex
	byConn    map[string]*Client
	byUser    map[string]map[string]*Client  // user -> conn_id -> client
	byChannel map[string]map[string]*Client  // channel -> conn_id -> client
	channels  map[string]map[string]struct{} // conn_id -> channel set
}

func NewRegistry() *Registry {
	return &Registry{
		byConn:    make(map[string]*Client),
		byUser:    make(map[string]map[string]*Client),
		byChannel: make(map[string]map[string]*Client),
		channels:  make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[c.ConnID] = c
	m := r.byUser[c.UserID]
	if m == nil {
		m = make(map[string]*Client)
		r.byUser[c.UserID] = m
	}
	m[c.ConnID] = c
}

// Remove drops the client and every topic subscription it held.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.channels[c.ConnID] {
		if subs := r.byChannel[ch]; subs != nil {
			delete(subs, c.ConnID)
			if len(subs) == 0 {
				delete(r.byChannel, ch)
			}
		}
	}
	delete(r.channels, c.ConnID)
	if m := r.byUser[c.UserID]; m != nil {
		delete(m, c.ConnID)
		if len(m) == 0 {
			delete(r.byUser, c.UserID)
		}
	}
	delete(r.byConn, c.ConnID)
}

func (r *Registry) Subscribe(c *Client, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.byChannel[channelID]
	if subs == nil {
		subs = make(map[string]*Client)
		r.byChannel[channelID] = subs
	}
	subs[c.ConnID] = c
	set := r.channels[c.ConnID]
	if set == nil {
		set = make(map[string]struct{})
		r.channels[c.ConnID] = set
	}
	set[channelID] = struct{}{}
}

func (r *Registry) Unsubscribe(c *Client, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subs := r.byChannel[channelID]; subs != nil {
		delete(subs, c.ConnID)
		if len(subs) == 0 {
			delete(r.byChannel, channelID)
		}
	}
	if set := r.channels[c.ConnID]; set != nil {
		delete(set, channelID)
	}
}

// Subscribed reports whether the connection joined the channel topic.
func (r *Registry) Subscribed(connID, channelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := r.byChannel[channelID]
	_, ok := subs[connID]
	return ok
}

// BroadcastChannel enqueues the frame for every subscriber of the
// channel topic. exceptConnID skips one connection ("" skips nobody);
// mutation results go to everyone including the sender, typing relays
// exclude the typist.
func (r *Registry) BroadcastChannel(channelID string, frame []byte, exceptConnID string) {
	r.mu.RLock()
	targets := make([]*Client, 0, len(r.byChannel[channelID]))
	for _, c := range r.byChannel[channelID] {
		if c.ConnID == exceptConnID {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.RUnlock()
	for _, c := range targets {
		c.enqueue(frame)
	}
}

// BroadcastAll fans the frame out to every live connection except one.
func (r *Registry) BroadcastAll(frame []byte, exceptConnID string) {
	r.mu.RLock()
	targets := make([]*Client, 0, len(r.byConn))
	for _, c := range r.byConn {
		if c.ConnID == exceptConnID {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.RUnlock()
	for _, c := range targets {
		c.enqueue(frame)
	}
}

// ListByUser returns the live connections of one user.
func (r *Registry) ListByUser(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[userID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}
