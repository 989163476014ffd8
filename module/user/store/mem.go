package store

import (
	"context"
	"sync"

	"Connectify/module/user/model"
)

type MemUserStore struct {
	mu         sync.RWMutex
	byID       map[string]*model.User
	byUsername map[string]string
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{
		byID:       make(map[string]*model.User),
		byUsername: make(map[string]string),
	}
}

func (s *MemUserStore) Insert(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.byID[u.ID] = &cp
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *MemUserStore) Get(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *MemUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, nil
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemUserStore) GetMany(ctx context.Context, ids []string) (map[string]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *MemUserStore) SetStatus(ctx context.Context, id, status string, lastSeenMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		u.Status = status
		u.LastSeen = lastSeenMS
	}
	return nil
}
