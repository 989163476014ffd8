package store

import (
	"context"

	"Connectify/module/user/model"
)

// UserStore is the identity collaborator's persistence port.
type UserStore interface {
	Insert(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetMany resolves summaries in bulk; unknown ids are simply absent
	// from the result.
	GetMany(ctx context.Context, ids []string) (map[string]*model.User, error)

	SetStatus(ctx context.Context, id, status string, lastSeenMS int64) error
}
