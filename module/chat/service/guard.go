package service

import (
	"context"

	"Connectify/module/chat/model"
	"Connectify/module/chat/store"
	"Connectify/tools/errs"
)

// Guard is the single membership check every channel-scoped operation
// funnels through, REST and socket alike. A missing channel, an inactive
// channel and a non-member all come back as the same ErrNotFoundOrDenied
// so a caller cannot probe which channels exist.
type Guard struct {
	Channels store.ChannelStore
}

func NewGuard(channels store.ChannelStore) *Guard {
	return &Guard{Channels: channels}
}

// CanAccess returns the channel when userID may read/write it.
func (g *Guard) CanAccess(ctx context.Context, userID, channelID string) (*model.Channel, error) {
	ch, err := g.Channels.Get(ctx, channelID)
	if err != nil {
		return nil, errs.WrapStore(err, "get channel")
	}
	if ch == nil || !ch.Active || !ch.HasMember(userID) {
		return nil, errs.ErrNotFoundOrDenied
	}
	return ch, nil
}
