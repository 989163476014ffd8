package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"Connectify/module/chat/model"
)

// In-memory store ports, same contracts as the Mongo implementations.
// Used by tests and local development without a mongod. Values are copied
// on the way in and out so callers never alias stored documents.

type MemChannelStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Channel
}

func NewMemChannelStore() *MemChannelStore {
	return &MemChannelStore{byID: make(map[string]*model.Channel)}
}

func copyChannel(ch *model.Channel) *model.Channel {
	cp := *ch
	cp.Members = append([]string(nil), ch.Members...)
	return &cp
}

func (s *MemChannelStore) Insert(ctx context.Context, ch *model.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[ch.ID] = copyChannel(ch)
	return nil
}

func (s *MemChannelStore) Get(ctx context.Context, id string) (*model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return copyChannel(ch), nil
}

func (s *MemChannelStore) FindActiveByMember(ctx context.Context, userID string) ([]*model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Channel
	for _, ch := range s.byID {
		if ch.Active && ch.HasMember(userID) {
			out = append(out, copyChannel(ch))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemChannelStore) SetLastMessage(ctx context.Context, channelID, messageID string, atMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.byID[channelID]; ok {
		ch.LastMessage = messageID
		ch.UpdatedAt = atMS
	}
	return nil
}

type MemMessageStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Message
}

func NewMemMessageStore() *MemMessageStore {
	return &MemMessageStore{byID: make(map[string]*model.Message)}
}

func copyMessage(m *model.Message) *model.Message {
	cp := *m
	cp.Reactions = append([]model.Reaction(nil), m.Reactions...)
	cp.Attachments = append([]model.Attachment(nil), m.Attachments...)
	return &cp
}

func (s *MemMessageStore) Insert(ctx context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[m.ID] = copyMessage(m)
	return nil
}

func (s *MemMessageStore) Get(ctx context.Context, id string) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return copyMessage(m), nil
}

func sortNewestFirst(ms []*model.Message) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].CreatedAt != ms[j].CreatedAt {
			return ms[i].CreatedAt > ms[j].CreatedAt
		}
		return ms[i].ID > ms[j].ID
	})
}

func window(ms []*model.Message, skip, limit int64) []*model.Message {
	if skip >= int64(len(ms)) {
		return nil
	}
	ms = ms[skip:]
	if limit > 0 && limit < int64(len(ms)) {
		ms = ms[:limit]
	}
	return ms
}

func (s *MemMessageStore) FindByChannel(ctx context.Context, channelID string, skip, limit int64) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Message
	for _, m := range s.byID {
		if m.Channel == channelID && !m.Deleted {
			out = append(out, copyMessage(m))
		}
	}
	sortNewestFirst(out)
	return window(out, skip, limit), nil
}

func (s *MemMessageStore) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, m := range s.byID {
		if m.Channel == channelID && !m.Deleted {
			n++
		}
	}
	return n, nil
}

func (s *MemMessageStore) UpdateContent(ctx context.Context, id, sender, content string, editedAtMS int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok || m.Sender != sender || m.Deleted {
		return false, nil
	}
	m.Content = content
	m.Edited = true
	m.EditedAt = editedAtMS
	return true, nil
}

func (s *MemMessageStore) MarkDeleted(ctx context.Context, id, sender string, deletedAtMS int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok || m.Sender != sender || m.Deleted {
		return false, nil
	}
	m.Deleted = true
	m.DeletedAt = deletedAtMS
	return true, nil
}

func (s *MemMessageStore) SetReactions(ctx context.Context, id string, reactions []model.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.byID[id]; ok {
		m.Reactions = append([]model.Reaction(nil), reactions...)
	}
	return nil
}

func (s *MemMessageStore) Search(ctx context.Context, query string, channelIDs []string, skip, limit int64) ([]*model.Message, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in := make(map[string]struct{}, len(channelIDs))
	for _, id := range channelIDs {
		in[id] = struct{}{}
	}
	q := strings.ToLower(query)

	var all []*model.Message
	for _, m := range s.byID {
		if m.Deleted {
			continue
		}
		if _, ok := in[m.Channel]; !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(m.Content), q) {
			continue
		}
		all = append(all, copyMessage(m))
	}
	sortNewestFirst(all)
	return window(all, skip, limit), int64(len(all)), nil
}
