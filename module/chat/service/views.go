package service

import (
	"context"

	"Connectify/module/chat/model"
	usermodel "Connectify/module/user/model"
	userstore "Connectify/module/user/store"
)

// Rendered shapes handed to the REST facade and the gateway. Both
// transports serialize these as-is, which is what keeps a sender's local
// echo and every other member's update pixel-identical.

type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
}

// ReactionView resolves the reacting user to id+username, matching the
// original's `reactions.user` populate.
type ReactionView struct {
	Emoji     string          `json:"emoji"`
	User      ReactionUserRef `json:"user"`
	CreatedAt int64           `json:"createdAt"`
}

type ReactionUserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ReplyPreview is the weak replyTo reference, rendered as a tombstone
// when the target was soft-deleted.
type ReplyPreview struct {
	ID      string            `json:"id"`
	Content string            `json:"content"`
	Sender  usermodel.Summary `json:"sender"`
	Deleted bool              `json:"deleted"`
}

type MessageView struct {
	ID          string             `json:"id"`
	Channel     string             `json:"channel"`
	Sender      usermodel.Summary  `json:"sender"`
	Kind        string             `json:"kind"`
	Content     string             `json:"content"`
	ReplyTo     *ReplyPreview      `json:"replyTo,omitempty"`
	Reactions   []ReactionView     `json:"reactions"`
	Attachments []model.Attachment `json:"attachments"`
	Edited      bool               `json:"edited"`
	EditedAt    int64              `json:"editedAt,omitempty"`
	CreatedAt   int64              `json:"createdAt"`
}

type ChannelView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Kind        string              `json:"kind"`
	Members     []usermodel.Summary `json:"members"`
	MemberCount int                 `json:"memberCount"`
	CreatedBy   usermodel.Summary   `json:"createdBy"`
	LastMessage *MessageView        `json:"lastMessage,omitempty"`
	Active      bool                `json:"active"`
	CreatedAt   int64               `json:"createdAt"`
	UpdatedAt   int64               `json:"updatedAt"`
}

// summaryOf falls back to a bare id when the user document is missing,
// so a dangling member reference never breaks rendering.
func summaryOf(users map[string]*usermodel.User, id string) usermodel.Summary {
	if u, ok := users[id]; ok {
		return u.Summary()
	}
	return usermodel.Summary{ID: id}
}

// resolveUsers batch-loads the users referenced by a set of messages:
// senders, reaction users and reply-target senders.
func resolveUsers(ctx context.Context, users userstore.UserStore, ms []*model.Message, replies map[string]*model.Message) (map[string]*usermodel.User, error) {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, m := range ms {
		add(m.Sender)
		for _, r := range m.Reactions {
			add(r.User)
		}
	}
	for _, rm := range replies {
		if rm != nil {
			add(rm.Sender)
		}
	}
	return users.GetMany(ctx, ids)
}

func renderMessage(m *model.Message, users map[string]*usermodel.User, replies map[string]*model.Message) *MessageView {
	v := &MessageView{
		ID:          m.ID,
		Channel:     m.Channel,
		Sender:      summaryOf(users, m.Sender),
		Kind:        m.Kind,
		Content:     m.Content,
		Reactions:   make([]ReactionView, 0, len(m.Reactions)),
		Attachments: m.Attachments,
		Edited:      m.Edited,
		EditedAt:    m.EditedAt,
		CreatedAt:   m.CreatedAt,
	}
	if v.Attachments == nil {
		v.Attachments = []model.Attachment{}
	}
	for _, r := range m.Reactions {
		ref := ReactionUserRef{ID: r.User}
		if u, ok := users[r.User]; ok {
			ref.Username = u.Username
		}
		v.Reactions = append(v.Reactions, ReactionView{Emoji: r.Emoji, User: ref, CreatedAt: r.CreatedAt})
	}
	if m.ReplyTo != "" {
		if rm, ok := replies[m.ReplyTo]; ok && rm != nil {
			p := &ReplyPreview{
				ID:      rm.ID,
				Sender:  summaryOf(users, rm.Sender),
				Deleted: rm.Deleted,
			}
			// Tombstone: a deleted reply target keeps its identity but
			// never its content.
			if !rm.Deleted {
				p.Content = rm.Content
			}
			v.ReplyTo = p
		}
	}
	return v
}
