package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Connectify/module/chat/model"
	"Connectify/module/chat/store"
	userstore "Connectify/module/user/store"
	"Connectify/tools/errs"
	"Connectify/tools/ids"
)

const (
	DefaultPageSize = 50
	SearchPageSize  = 20
)

// Messages owns the message lifecycle: create, edit, soft-delete,
// reactions, pagination and search. It is the single mutation path for
// both transports; the gateway and the REST facade call the exact same
// methods, so invariants are enforced once.
type Messages struct {
	Store    store.MessageStore
	Guard    *Guard
	Registry *Channels
	Users    userstore.UserStore

	// ReactionRequiresMembership re-checks channel membership on
	// ToggleReaction. Off by default: the original only checked that the
	// message exists, which lets a since-removed member keep reacting to
	// history they can address by id.
	ReactionRequiresMembership bool
}

func NewMessages(ms store.MessageStore, guard *Guard, registry *Channels, us userstore.UserStore) *Messages {
	return &Messages{Store: ms, Guard: guard, Registry: registry, Users: us}
}

type CreateInput struct {
	Channel     string
	Kind        string
	Content     string
	ReplyTo     string
	Attachments []model.Attachment
}

// List returns one page of a channel's history. The store paginates from
// the newest message backward; the page is flipped to chronological
// order before it leaves, so page 1 is the most recent pageSize messages
// ready to render as a timeline.
func (s *Messages) List(ctx context.Context, userID, channelID string, page, pageSize int64) ([]*MessageView, *Pagination, error) {
	if _, err := s.Guard.CanAccess(ctx, userID, channelID); err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	ms, err := s.Store.FindByChannel(ctx, channelID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, nil, errs.WrapStore(err, "list messages")
	}
	total, err := s.Store.CountByChannel(ctx, channelID)
	if err != nil {
		return nil, nil, errs.WrapStore(err, "count messages")
	}

	// Flip newest-first to chronological.
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}

	views, err := s.render(ctx, ms)
	if err != nil {
		return nil, nil, err
	}
	return views, &Pagination{Page: page, Limit: pageSize, Total: total}, nil
}

// Create persists a new message after the membership check and content
// validation, then touches the channel's last-message pointer
// (best-effort, skipped for system messages).
func (s *Messages) Create(ctx context.Context, userID string, in CreateInput) (*MessageView, error) {
	if _, err := s.Guard.CanAccess(ctx, userID, in.Channel); err != nil {
		return nil, err
	}

	kind := in.Kind
	if kind == "" {
		kind = model.MessageKindText
	}
	if !model.ValidMessageKind(kind) {
		return nil, errs.Validation("invalid message kind")
	}
	if err := validateContent(kind, in.Content); err != nil {
		return nil, err
	}
	for _, a := range in.Attachments {
		if a.Name == "" || a.URL == "" || !model.ValidMediaKind(a.Kind) {
			return nil, errs.Validation("invalid attachment")
		}
	}

	if in.ReplyTo != "" {
		target, err := s.Store.Get(ctx, in.ReplyTo)
		if err != nil {
			return nil, errs.WrapStore(err, "resolve reply target")
		}
		// The reference is weak once created, but it must start out
		// pointing at a message in the same channel.
		if target == nil || target.Channel != in.Channel {
			return nil, errs.Validation("reply target not found in channel")
		}
	}

	m := &model.Message{
		ID:          ids.GenerateString(),
		Channel:     in.Channel,
		Sender:      userID,
		Kind:        kind,
		Content:     in.Content,
		ReplyTo:     in.ReplyTo,
		Reactions:   []model.Reaction{},
		Attachments: in.Attachments,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if m.Attachments == nil {
		m.Attachments = []model.Attachment{}
	}
	if err := s.Store.Insert(ctx, m); err != nil {
		return nil, errs.WrapStore(err, "insert message")
	}

	if m.Kind != model.MessageKindSystem {
		s.Registry.TouchLastMessage(ctx, m.Channel, m.ID)
	}
	return s.renderOne(ctx, m)
}

// Edit updates content on the sender's own non-deleted message. A wrong
// sender, a deleted message and a missing id are indistinguishable to
// the caller.
func (s *Messages) Edit(ctx context.Context, userID, messageID, content string) (*MessageView, error) {
	if err := validateContent(model.MessageKindText, content); err != nil {
		return nil, err
	}
	ok, err := s.Store.UpdateContent(ctx, messageID, userID, content, time.Now().UnixMilli())
	if err != nil {
		return nil, errs.WrapStore(err, "edit message")
	}
	if !ok {
		return nil, errs.ErrNotFoundOrDenied
	}
	m, err := s.Store.Get(ctx, messageID)
	if err != nil {
		return nil, errs.WrapStore(err, "reload message")
	}
	if m == nil {
		return nil, errs.ErrNotFoundOrDenied
	}
	return s.renderOne(ctx, m)
}

// SoftDelete hides the sender's own message from every read path while
// keeping the record for reply tombstones. Returns the deleted message
// so the gateway knows which channel to notify.
func (s *Messages) SoftDelete(ctx context.Context, userID, messageID string) (*model.Message, error) {
	ok, err := s.Store.MarkDeleted(ctx, messageID, userID, time.Now().UnixMilli())
	if err != nil {
		return nil, errs.WrapStore(err, "delete message")
	}
	if !ok {
		return nil, errs.ErrNotFoundOrDenied
	}
	m, err := s.Store.Get(ctx, messageID)
	if err != nil {
		return nil, errs.WrapStore(err, "reload message")
	}
	if m == nil {
		return nil, errs.ErrNotFoundOrDenied
	}
	return m, nil
}

// ToggleReaction flips the (user, emoji) reaction: present -> removed,
// absent -> appended. Idempotent as a pair of calls. The returned bool
// reports whether the net effect was an addition, which picks the
// outbound event wording. Concurrent toggles are last-write-wins by
// design.
func (s *Messages) ToggleReaction(ctx context.Context, userID, messageID, emoji string) (*MessageView, bool, error) {
	if emoji == "" || len([]rune(emoji)) > model.ReactionEmojiMaxLen {
		return nil, false, errs.Validation("invalid emoji")
	}

	m, err := s.Store.Get(ctx, messageID)
	if err != nil {
		return nil, false, errs.WrapStore(err, "get message")
	}
	if m == nil || m.Deleted {
		return nil, false, errs.ErrNotFoundOrDenied
	}

	if s.ReactionRequiresMembership {
		if _, err := s.Guard.CanAccess(ctx, userID, m.Channel); err != nil {
			return nil, false, err
		}
	}

	added := false
	if i := m.FindReaction(userID, emoji); i >= 0 {
		m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
	} else {
		m.Reactions = append(m.Reactions, model.Reaction{
			Emoji:     emoji,
			User:      userID,
			CreatedAt: time.Now().UnixMilli(),
		})
		added = true
	}
	if err := s.Store.SetReactions(ctx, messageID, m.Reactions); err != nil {
		return nil, false, errs.WrapStore(err, "set reactions")
	}

	view, err := s.renderOne(ctx, m)
	if err != nil {
		return nil, false, err
	}
	return view, added, nil
}

// Search matches content case-insensitively over non-deleted messages.
// With a channel filter the caller must be a member; without one the
// scope is exactly the caller's channels, so results never leak across
// membership boundaries.
func (s *Messages) Search(ctx context.Context, userID, query, channelID string, page, pageSize int64) ([]*MessageView, *Pagination, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, errs.Validation("search query is required")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = SearchPageSize
	}

	var scope []string
	if channelID != "" {
		if _, err := s.Guard.CanAccess(ctx, userID, channelID); err != nil {
			return nil, nil, err
		}
		scope = []string{channelID}
	} else {
		chs, err := s.Registry.Store.FindActiveByMember(ctx, userID)
		if err != nil {
			return nil, nil, errs.WrapStore(err, "list member channels")
		}
		for _, ch := range chs {
			scope = append(scope, ch.ID)
		}
		if len(scope) == 0 {
			return []*MessageView{}, &Pagination{Page: page, Limit: pageSize, Total: 0}, nil
		}
	}

	ms, total, err := s.Store.Search(ctx, query, scope, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, nil, errs.WrapStore(err, "search messages")
	}
	views, err := s.render(ctx, ms)
	if err != nil {
		return nil, nil, err
	}
	return views, &Pagination{Page: page, Limit: pageSize, Total: total}, nil
}

func validateContent(kind, content string) error {
	if kind == model.MessageKindText && strings.TrimSpace(content) == "" {
		return errs.Validation("message content is required")
	}
	if len([]rune(content)) > model.MessageContentMaxLen {
		return errs.Validation(fmt.Sprintf("message content cannot exceed %d characters", model.MessageContentMaxLen))
	}
	return nil
}

func (s *Messages) renderOne(ctx context.Context, m *model.Message) (*MessageView, error) {
	views, err := s.render(ctx, []*model.Message{m})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// render resolves reply previews and user summaries for a batch of
// messages.
func (s *Messages) render(ctx context.Context, ms []*model.Message) ([]*MessageView, error) {
	replies := make(map[string]*model.Message)
	for _, m := range ms {
		if m.ReplyTo == "" {
			continue
		}
		if _, ok := replies[m.ReplyTo]; ok {
			continue
		}
		rm, err := s.Store.Get(ctx, m.ReplyTo)
		if err != nil {
			return nil, errs.WrapStore(err, "resolve reply preview")
		}
		replies[m.ReplyTo] = rm // nil stays nil: dangling weak reference
	}

	users, err := resolveUsers(ctx, s.Users, ms, replies)
	if err != nil {
		return nil, errs.WrapStore(err, "resolve users")
	}

	out := make([]*MessageView, 0, len(ms))
	for _, m := range ms {
		out = append(out, renderMessage(m, users, replies))
	}
	return out, nil
}
