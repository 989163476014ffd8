package store

import (
	"context"

	"Connectify/module/chat/model"
)

// The persistence collaborator, abstracted so the chat core runs against
// Mongo in production (mongo.go) and an in-memory port in tests (mem.go).
// Every method maps to one store round-trip; nothing here holds locks
// across calls.

type ChannelStore interface {
	Insert(ctx context.Context, ch *model.Channel) error
	Get(ctx context.Context, id string) (*model.Channel, error)

	// FindActiveByMember returns active channels containing userID,
	// most-recently-updated first.
	FindActiveByMember(ctx context.Context, userID string) ([]*model.Channel, error)

	// SetLastMessage atomically updates the last-message pointer and
	// bumps updated_at.
	SetLastMessage(ctx context.Context, channelID, messageID string, atMS int64) error
}

type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error

	// Get resolves any message by id, deleted or not. Callers decide how
	// much of a deleted message may be shown (tombstones).
	Get(ctx context.Context, id string) (*model.Message, error)

	// FindByChannel returns non-deleted messages, newest first
	// (created_at desc, id desc), windowed by skip/limit.
	FindByChannel(ctx context.Context, channelID string, skip, limit int64) ([]*model.Message, error)
	CountByChannel(ctx context.Context, channelID string) (int64, error)

	// UpdateContent applies an edit iff the message exists, belongs to
	// sender and is not deleted. Reports whether anything matched.
	UpdateContent(ctx context.Context, id, sender, content string, editedAtMS int64) (bool, error)

	// MarkDeleted soft-deletes under the same ownership filter.
	MarkDeleted(ctx context.Context, id, sender string, deletedAtMS int64) (bool, error)

	// SetReactions replaces the reaction list (last write wins).
	SetReactions(ctx context.Context, id string, reactions []model.Reaction) error

	// Search matches content case-insensitively as a substring over
	// non-deleted messages in the given channels, newest first, and
	// returns the page plus the total match count.
	Search(ctx context.Context, query string, channelIDs []string, skip, limit int64) ([]*model.Message, int64, error)
}
