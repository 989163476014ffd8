package service

import (
	"context"
	"fmt"
	"testing"

	"Connectify/module/chat/model"
	"Connectify/tools/errs"
	"Connectify/tools/ids"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) seedChannel(t *testing.T, creator string, members ...string) string {
	t.Helper()
	ch, err := f.channels.Create(context.Background(), creator, "room", "", "public", members)
	require.NoError(t, err)
	return ch.ID
}

func (f *fixture) send(t *testing.T, userID, channelID, content string) *MessageView {
	t.Helper()
	m, err := f.messages.Create(context.Background(), userID, CreateInput{Channel: channelID, Content: content})
	require.NoError(t, err)
	return m
}

func TestPaginationTwoPagesNoOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch := f.seedChannel(t, alice)

	for i := 1; i <= 5; i++ {
		f.send(t, alice, ch, fmt.Sprintf("msg %d", i))
	}

	page1, pg, err := f.messages.List(ctx, alice, ch, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, int64(5), pg.Total)
	// Page 1 is the two newest, in chronological order.
	assert.Equal(t, "msg 4", page1[0].Content)
	assert.Equal(t, "msg 5", page1[1].Content)

	page2, _, err := f.messages.List(ctx, alice, ch, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "msg 2", page2[0].Content)
	assert.Equal(t, "msg 3", page2[1].Content)

	seen := map[string]struct{}{}
	for _, m := range append(page1, page2...) {
		_, dup := seen[m.ID]
		assert.False(t, dup, "message %s appears on both pages", m.ID)
		seen[m.ID] = struct{}{}
	}
}

func TestNonMemberAndMissingChannelLookIdentical(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	ch := f.seedChannel(t, alice)

	_, _, errMember := f.messages.List(ctx, bob, ch, 1, 10)
	_, _, errMissing := f.messages.List(ctx, bob, ids.GenerateString(), 1, 10)

	require.Error(t, errMember)
	require.Error(t, errMissing)
	assert.ErrorIs(t, errMember, errs.ErrNotFoundOrDenied)
	assert.ErrorIs(t, errMissing, errs.ErrNotFoundOrDenied)
	// The rendered shape must not leak which case it was.
	assert.Equal(t, errMember.Error(), errMissing.Error())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch := f.seedChannel(t, alice)

	_, err := f.messages.Create(ctx, alice, CreateInput{Channel: ch, Content: "   "})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.messages.Create(ctx, alice, CreateInput{Channel: ch, Kind: "carrier-pigeon", Content: "hi"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.messages.Create(ctx, alice, CreateInput{
		Channel: ch, Content: "hi",
		Attachments: []model.Attachment{{Name: "pic.png", URL: "", Kind: "image"}},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestReplyMustResolveInSameChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch1 := f.seedChannel(t, alice)
	ch2 := f.seedChannel(t, alice)

	origin := f.send(t, alice, ch1, "original")

	_, err := f.messages.Create(ctx, alice, CreateInput{Channel: ch2, Content: "cross", ReplyTo: origin.ID})
	assert.ErrorIs(t, err, errs.ErrValidation)

	reply, err := f.messages.Create(ctx, alice, CreateInput{Channel: ch1, Content: "same", ReplyTo: origin.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, origin.ID, reply.ReplyTo.ID)
	assert.Equal(t, "original", reply.ReplyTo.Content)
	assert.Equal(t, "alice", reply.ReplyTo.Sender.Username)
}

func TestDeletedReplyRendersTombstone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch := f.seedChannel(t, alice)

	origin := f.send(t, alice, ch, "doomed")
	reply, err := f.messages.Create(ctx, alice, CreateInput{Channel: ch, Content: "re: doomed", ReplyTo: origin.ID})
	require.NoError(t, err)

	_, err = f.messages.SoftDelete(ctx, alice, origin.ID)
	require.NoError(t, err)

	page, _, err := f.messages.List(ctx, alice, ch, 1, 10)
	require.NoError(t, err)
	var got *MessageView
	for _, m := range page {
		if m.ID == reply.ID {
			got = m
		}
	}
	require.NotNil(t, got)
	require.NotNil(t, got.ReplyTo)
	assert.True(t, got.ReplyTo.Deleted)
	assert.Empty(t, got.ReplyTo.Content)
	assert.Equal(t, origin.ID, got.ReplyTo.ID)
}

func TestEditOwnMessageOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	ch := f.seedChannel(t, alice, bob)

	m := f.send(t, alice, ch, "first draft")

	got, err := f.messages.Edit(ctx, alice, m.ID, "second draft")
	require.NoError(t, err)
	assert.True(t, got.Edited)
	assert.NotZero(t, got.EditedAt)
	assert.Equal(t, "second draft", got.Content)

	_, err = f.messages.Edit(ctx, bob, m.ID, "hijack")
	assert.ErrorIs(t, err, errs.ErrNotFoundOrDenied)
}

func TestSoftDeleteExcludesAndLocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch := f.seedChannel(t, alice)

	keep := f.send(t, alice, ch, "keep")
	gone := f.send(t, alice, ch, "gone")

	deleted, err := f.messages.SoftDelete(ctx, alice, gone.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Equal(t, ch, deleted.Channel)

	page, pg, err := f.messages.List(ctx, alice, ch, 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, keep.ID, page[0].ID)
	assert.Equal(t, int64(1), pg.Total)

	// Every further mutation of the deleted message fails the same way.
	_, err = f.messages.SoftDelete(ctx, alice, gone.ID)
	assert.ErrorIs(t, err, errs.ErrNotFoundOrDenied)
	_, err = f.messages.Edit(ctx, alice, gone.ID, "necromancy")
	assert.ErrorIs(t, err, errs.ErrNotFoundOrDenied)
	_, _, err = f.messages.ToggleReaction(ctx, alice, gone.ID, "👍")
	assert.ErrorIs(t, err, errs.ErrNotFoundOrDenied)
}

func TestReactionToggleRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch := f.seedChannel(t, alice)
	m := f.send(t, alice, ch, "react to me")

	got, added, err := f.messages.ToggleReaction(ctx, alice, m.ID, "👍")
	require.NoError(t, err)
	assert.True(t, added)
	require.Len(t, got.Reactions, 1)
	assert.Equal(t, "👍", got.Reactions[0].Emoji)
	assert.Equal(t, alice, got.Reactions[0].User.ID)
	assert.Equal(t, "alice", got.Reactions[0].User.Username)

	got, added, err = f.messages.ToggleReaction(ctx, alice, m.ID, "👍")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, got.Reactions)
}

func TestReactionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch := f.seedChannel(t, alice)
	m := f.send(t, alice, ch, "hi")

	_, _, err := f.messages.ToggleReaction(ctx, alice, m.ID, "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, _, err = f.messages.ToggleReaction(ctx, alice, m.ID, "0123456789A")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestReactionMembershipGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	mallory := f.seedUser(t, "mallory")
	ch := f.seedChannel(t, alice)
	m := f.send(t, alice, ch, "hi")

	// Default keeps the original behavior: existence is enough.
	_, added, err := f.messages.ToggleReaction(ctx, mallory, m.ID, "👀")
	require.NoError(t, err)
	assert.True(t, added)

	f.messages.ReactionRequiresMembership = true
	_, _, err = f.messages.ToggleReaction(ctx, mallory, m.ID, "👀")
	assert.ErrorIs(t, err, errs.ErrNotFoundOrDenied)
}

func TestSearchScopedToMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	shared := f.seedChannel(t, alice, bob)
	private := f.seedChannel(t, alice)

	f.send(t, alice, shared, "deploy is green")
	f.send(t, alice, private, "deploy secrets here")

	got, pg, err := f.messages.Search(ctx, bob, "DEPLOY", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, shared, got[0].Channel)
	assert.Equal(t, int64(1), pg.Total)

	// Explicit channel filter is guarded.
	_, _, err = f.messages.Search(ctx, bob, "deploy", private, 1, 10)
	assert.ErrorIs(t, err, errs.ErrNotFoundOrDenied)
}

func TestSearchValidationAndEmptyScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loner := f.seedUser(t, "loner")

	_, _, err := f.messages.Search(ctx, loner, "   ", "", 1, 10)
	assert.ErrorIs(t, err, errs.ErrValidation)

	got, pg, err := f.messages.Search(ctx, loner, "anything", "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int64(0), pg.Total)
}

func TestSearchExcludesDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	ch := f.seedChannel(t, alice)

	m := f.send(t, alice, ch, "findable")
	_, err := f.messages.SoftDelete(ctx, alice, m.ID)
	require.NoError(t, err)

	got, _, err := f.messages.Search(ctx, alice, "findable", "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
