package messagerepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/databasetest"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/conversationrepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/messagerepo"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	conversations messaging.ConversationRepository
	messages      messaging.MessageRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	_, db := databasetest.Open(t)
	return fixture{
		conversations: conversationrepo.NewConversationGormRepository(db),
		messages:      messagerepo.NewMessageGormRepository(db),
	}
}

func (f fixture) conversation(t *testing.T, a, b string) *messaging.Conversation {
	t.Helper()
	conv, err := f.conversations.CreatePair(context.Background(), a, b, nil)
	require.NoError(t, err)
	return conv
}

func (f fixture) send(t *testing.T, conv *messaging.Conversation, sender, content string, at time.Time) *messaging.Message {
	t.Helper()
	msg, ok := messaging.NewMessage(conv, sender, content, at)
	require.True(t, ok)
	stored, err := f.messages.Append(context.Background(), msg)
	require.NoError(t, err)
	return stored
}

func TestListByConversationNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := f.conversation(t, "cand", "rec")
	other := f.conversation(t, "cand", "rec-2")

	first := f.send(t, conv, "rec", "hello", t0)
	second := f.send(t, conv, "cand", "hi", t0.Add(time.Second))
	third := f.send(t, conv, "rec", "how are you", t0.Add(2*time.Second))
	f.send(t, other, "rec-2", "elsewhere", t0)

	page, total, err := f.messages.ListByConversation(ctx, conv.ID, query.Pagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, third.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)

	page, _, err = f.messages.ListByConversation(ctx, conv.ID, query.Pagination{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
	assert.Equal(t, "rec", page[0].SenderID)
	assert.Equal(t, "cand", page[0].RecipientID)
	assert.Equal(t, messaging.MessageStatusSent, page[0].Status)
}

func TestMarkReadOnlyTouchesRecipientUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := f.conversation(t, "cand", "rec")

	toCand := f.send(t, conv, "rec", "hello", t0)
	toRec := f.send(t, conv, "cand", "hi", t0.Add(time.Second))

	updated, err := f.messages.MarkRead(ctx, []string{toCand.ID, toRec.ID, "missing"}, "cand", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = f.messages.MarkRead(ctx, []string{toCand.ID}, "cand", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, updated)

	updated, err = f.messages.MarkRead(ctx, nil, "cand", t0)
	require.NoError(t, err)
	assert.Zero(t, updated)

	loaded, err := f.messages.FindByIDs(ctx, []string{toCand.ID, toRec.ID})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	for _, m := range loaded {
		if m.ID == toCand.ID {
			assert.True(t, m.IsRead)
			assert.Equal(t, messaging.MessageStatusRead, m.Status)
			require.NotNil(t, m.ReadAt)
			assert.True(t, m.ReadAt.Equal(t0.Add(time.Minute)))
		} else {
			assert.False(t, m.IsRead)
			assert.Nil(t, m.ReadAt)
		}
	}
}

func TestMarkConversationReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := f.conversation(t, "cand", "rec")

	f.send(t, conv, "rec", "one", t0)
	f.send(t, conv, "rec", "two", t0.Add(time.Second))
	f.send(t, conv, "cand", "three", t0.Add(2*time.Second))

	updated, err := f.messages.MarkConversationRead(ctx, conv.ID, "cand", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = f.messages.MarkConversationRead(ctx, conv.ID, "cand", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, updated)

	counts, err := f.messages.CountUnread(ctx, []string{conv.ID}, "rec")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[conv.ID])
}

func TestMarkConversationDeliveredSkipsReadMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := f.conversation(t, "cand", "rec")

	read := f.send(t, conv, "rec", "one", t0)
	pending := f.send(t, conv, "rec", "two", t0.Add(time.Second))

	_, err := f.messages.MarkRead(ctx, []string{read.ID}, "cand", t0.Add(time.Minute))
	require.NoError(t, err)

	updated, err := f.messages.MarkConversationDelivered(ctx, conv.ID, "cand", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	loaded, err := f.messages.FindByIDs(ctx, []string{read.ID, pending.ID})
	require.NoError(t, err)
	for _, m := range loaded {
		switch m.ID {
		case read.ID:
			assert.Equal(t, messaging.MessageStatusRead, m.Status)
		case pending.ID:
			assert.Equal(t, messaging.MessageStatusDelivered, m.Status)
			assert.NotNil(t, m.DeliveredAt)
		}
	}

	updated, err = f.messages.MarkConversationDelivered(ctx, conv.ID, "cand", t0.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestCountUnreadAcrossConversations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.conversation(t, "me", "alice")
	b := f.conversation(t, "me", "bob")
	c := f.conversation(t, "me", "carol")

	f.send(t, a, "alice", "1", t0)
	f.send(t, a, "alice", "2", t0.Add(time.Second))
	f.send(t, b, "bob", "3", t0)
	f.send(t, b, "me", "4", t0.Add(time.Second))
	f.send(t, c, "me", "5", t0)

	counts, err := f.messages.CountUnread(ctx, []string{a.ID, b.ID, c.ID}, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[a.ID])
	assert.Equal(t, int64(1), counts[b.ID])
	assert.Zero(t, counts[c.ID])

	empty, err := f.messages.CountUnread(ctx, nil, "me")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
