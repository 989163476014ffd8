package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Connectify/logger"
	"Connectify/module/chat/model"
	"Connectify/module/chat/store"
	usermodel "Connectify/module/user/model"
	userstore "Connectify/module/user/store"
	"Connectify/tools/errs"
	"Connectify/tools/ids"
)

// Channels is the channel registry: creation, listing with resolved
// member summaries and last-message previews, and the denormalized
// last-message pointer.
type Channels struct {
	Store    store.ChannelStore
	Messages store.MessageStore
	Users    userstore.UserStore
}

func NewChannels(cs store.ChannelStore, ms store.MessageStore, us userstore.UserStore) *Channels {
	return &Channels{Store: cs, Messages: ms, Users: us}
}

// Create validates and persists a new channel. The creator is always a
// member; memberIDs are deduplicated keeping first-seen order so the
// join order survives for display.
func (s *Channels) Create(ctx context.Context, userID, name, description, kind string, memberIDs []string) (*ChannelView, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < model.ChannelNameMinLen || n > model.ChannelNameMaxLen {
		return nil, errs.Validation(fmt.Sprintf("channel name must be %d-%d characters",
			model.ChannelNameMinLen, model.ChannelNameMaxLen))
	}
	if len([]rune(description)) > model.ChannelDescMaxLen {
		return nil, errs.Validation(fmt.Sprintf("description cannot exceed %d characters", model.ChannelDescMaxLen))
	}
	if kind == "" {
		kind = model.ChannelKindPublic
	}
	if !model.ValidChannelKind(kind) {
		return nil, errs.Validation("invalid channel kind")
	}

	members := []string{userID}
	seen := map[string]struct{}{userID: {}}
	for _, id := range memberIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	now := time.Now().UnixMilli()
	ch := &model.Channel{
		ID:          ids.GenerateString(),
		Name:        name,
		Description: description,
		Kind:        kind,
		Members:     members,
		CreatedBy:   userID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Insert(ctx, ch); err != nil {
		return nil, errs.WrapStore(err, "insert channel")
	}
	return s.renderChannel(ctx, ch)
}

// ListForUser returns the caller's active channels, most recently
// updated first, with member summaries and the resolved last message.
func (s *Channels) ListForUser(ctx context.Context, userID string) ([]*ChannelView, error) {
	chs, err := s.Store.FindActiveByMember(ctx, userID)
	if err != nil {
		return nil, errs.WrapStore(err, "list channels")
	}
	out := make([]*ChannelView, 0, len(chs))
	for _, ch := range chs {
		v, err := s.renderChannel(ctx, ch)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// TouchLastMessage updates the channel's last-message pointer. It is
// best-effort by contract: the pointer only feeds the channel-list
// preview, so a failure here must never fail the message write that
// triggered it.
func (s *Channels) TouchLastMessage(ctx context.Context, channelID, messageID string) {
	if err := s.Store.SetLastMessage(ctx, channelID, messageID, time.Now().UnixMilli()); err != nil {
		logger.Warnf("touch last message failed channel=%s message=%s err=%v", channelID, messageID, err)
	}
}

func (s *Channels) renderChannel(ctx context.Context, ch *model.Channel) (*ChannelView, error) {
	var last *model.Message
	if ch.LastMessage != "" {
		m, err := s.Messages.Get(ctx, ch.LastMessage)
		if err != nil {
			return nil, errs.WrapStore(err, "get last message")
		}
		// The pointer is a weak reference; it may lag behind a delete.
		if m != nil && !m.Deleted {
			last = m
		}
	}

	refs := append([]string(nil), ch.Members...)
	refs = append(refs, ch.CreatedBy)
	if last != nil {
		refs = append(refs, last.Sender)
	}
	users, err := s.Users.GetMany(ctx, refs)
	if err != nil {
		return nil, errs.WrapStore(err, "resolve channel users")
	}

	v := &ChannelView{
		ID:          ch.ID,
		Name:        ch.Name,
		Description: ch.Description,
		Kind:        ch.Kind,
		Members:     make([]usermodel.Summary, 0, len(ch.Members)),
		MemberCount: len(ch.Members),
		CreatedBy:   summaryOf(users, ch.CreatedBy),
		Active:      ch.Active,
		CreatedAt:   ch.CreatedAt,
		UpdatedAt:   ch.UpdatedAt,
	}
	for _, m := range ch.Members {
		v.Members = append(v.Members, summaryOf(users, m))
	}
	if last != nil {
		v.LastMessage = renderMessage(last, users, nil)
	}
	return v, nil
}
