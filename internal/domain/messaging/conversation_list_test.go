package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// openAndSend creates the conversation and posts one message from sender.
func (f *fixture) openAndSend(t *testing.T, caller, other, sender string) *messaging.Conversation {
	t.Helper()
	ctx := context.Background()
	conv, err := f.service.CreateOrGetConversation(ctx, caller, other, "")
	require.NoError(t, err)
	_, err = f.service.SendMessage(ctx, sender, conv.ID, "hello from "+sender)
	require.NoError(t, err)
	return conv
}

func TestConversationList_ExcludesEmptyConversationsAndSortsByLastMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.evidence.AddCandidate("cand", "Lan Nguyen", "lan.png")
	f.evidence.AddRecruiter("rec-a", "Minh", messaging.Company{Name: "Acme", Logo: "acme.png"})
	f.evidence.AddRecruiter("rec-b", "Hoa", messaging.Company{Name: "Globex"})
	f.evidence.AddRecruiter("rec-c", "Tuan", messaging.Company{Name: "Initech"})

	first := f.openAndSend(t, "cand", "rec-a", "cand")
	second := f.openAndSend(t, "cand", "rec-b", "rec-b")
	_, err := f.service.CreateOrGetConversation(ctx, "cand", "rec-c", "")
	require.NoError(t, err)

	page, err := f.service.GetLatestConversations(ctx, "cand", messaging.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, first.ID, page.Items[1].ID)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.Equal(t, 1, page.Meta.TotalPages)

	assert.Equal(t, "Globex", page.Items[0].OtherParticipant.Name)
	assert.Equal(t, messaging.RoleRecruiter, page.Items[0].OtherParticipant.Role)
	assert.Equal(t, int64(1), page.Items[0].UnreadCount)
	assert.Equal(t, "Acme", page.Items[1].OtherParticipant.Name)
	assert.Equal(t, "acme.png", page.Items[1].OtherParticipant.Avatar)
	assert.Equal(t, int64(0), page.Items[1].UnreadCount)
	require.NotNil(t, page.Items[1].LastMessage)
	assert.Equal(t, "hello from cand", page.Items[1].LastMessage.Content)
}

func TestConversationList_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.evidence.AddCandidate("cand", "Lan", "")
	for _, id := range []string{"rec-1", "rec-2", "rec-3"} {
		f.evidence.AddRecruiter(id, "R "+id, messaging.Company{})
		f.openAndSend(t, "cand", id, "cand")
	}

	page, err := f.service.GetLatestConversations(ctx, "cand", messaging.ListParams{Pagination: query.Pagination{Page: 2, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "R rec-1", page.Items[0].OtherParticipant.Name)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

func TestConversationList_Search(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	f.evidence.AddCandidate("cand-1", "Nguyễn Văn An", "")
	f.evidence.AddCandidate("cand-2", "Trần Thị Bình", "")
	f.evidence.AddCandidate("cand-3", "An Phạm", "")
	for _, id := range []string{"cand-1", "cand-2", "cand-3"} {
		f.openAndSend(t, id, "rec", id)
	}

	page, err := f.service.GetLatestConversations(ctx, "rec", messaging.ListParams{Search: "  an "})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "An Phạm", page.Items[0].OtherParticipant.Name)
	assert.Equal(t, "Nguyễn Văn An", page.Items[1].OtherParticipant.Name)
	assert.Equal(t, int64(2), page.Meta.Total)

	page, err = f.service.GetLatestConversations(ctx, "rec", messaging.ListParams{Search: "BÌNH"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Trần Thị Bình", page.Items[0].OtherParticipant.Name)

	page, err = f.service.GetLatestConversations(ctx, "rec", messaging.ListParams{Search: "an", Pagination: query.Pagination{Page: 2, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Nguyễn Văn An", page.Items[0].OtherParticipant.Name)

	page, err = f.service.GetLatestConversations(ctx, "rec", messaging.ListParams{Search: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Meta.Total)
}

func TestConversationList_DisplayFallbacks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.evidence.AddCandidate("cand", "Lan", "")
	f.evidence.AddRecruiter("rec-personal", "Minh Tran", messaging.Company{})
	f.evidence.AddUser("rec-bare", messaging.RoleRecruiter)
	f.evidence.AddUser("ghost", messaging.RoleCandidate)

	f.openAndSend(t, "cand", "rec-personal", "cand")
	f.openAndSend(t, "cand", "rec-bare", "cand")
	f.openAndSend(t, "cand", "ghost", "cand")

	// The other user has since disappeared from the directory.
	orphan, err := f.conversations.CreatePair(ctx, "cand", "deleted-user", nil)
	require.NoError(t, err)
	_, err = f.service.SendMessage(ctx, "cand", orphan.ID, "still there?")
	require.NoError(t, err)

	page, err := f.service.GetLatestConversations(ctx, "cand", messaging.ListParams{})
	require.NoError(t, err)
	names := map[string]string{}
	for _, item := range page.Items {
		names[item.OtherParticipant.UserID] = item.OtherParticipant.Name
	}
	assert.Equal(t, "Minh Tran", names["rec-personal"], "no company falls back to the personal name")
	assert.Equal(t, "rec-bare", names["rec-bare"], "no profile falls back to the user id")
	assert.Equal(t, "ghost", names["ghost"])
	assert.Equal(t, "deleted-user", names["deleted-user"])
}

func TestConversationList_ApplicationContextJoin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.recruiterWithJob("rec", "Acme", "job-1", "Backend Engineer")
	f.evidence.AddJob("rp-rec", "job-2", "Platform Engineer")
	c := f.evidence.AddCandidate("cand", "Lan", "")
	older := f.evidence.AddApplication(c.ID, "job-1", messaging.ApplicationStatusPending, baseTime)
	newer := f.evidence.AddApplication(c.ID, "job-2", messaging.ApplicationStatusScheduledInterview, baseTime.Add(time.Hour))

	f.openAndSend(t, "cand", "rec", "cand")

	page, err := f.service.GetLatestConversations(ctx, "rec", messaging.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	view := page.Items[0].Context
	require.NotNil(t, view)
	assert.Equal(t, messaging.ContextTypeApplication, view.Type)
	require.NotNil(t, view.Status)
	assert.Equal(t, messaging.ApplicationStatusScheduledInterview, *view.Status)
	require.Len(t, view.Applications, 2)
	assert.Equal(t, newer.ID, view.Applications[0].ID)
	assert.Equal(t, "Platform Engineer", view.Applications[0].JobTitle)
	assert.Equal(t, older.ID, view.Applications[1].ID)
}

func TestConversationList_LegacyContextUsesContextID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.recruiterWithJob("rec", "Acme", "job-1", "Backend Engineer")
	c := f.evidence.AddCandidate("cand", "Lan", "")
	application := f.evidence.AddApplication(c.ID, "job-1", messaging.ApplicationStatusAccepted, baseTime)

	conv := f.openAndSend(t, "cand", "rec", "cand")
	require.NoError(t, f.conversations.SetContext(ctx, conv.ID, &messaging.Context{
		Type:      messaging.ContextTypeApplication,
		ContextID: application.ID,
		Title:     "Backend Engineer",
	}))

	detail, err := f.service.GetConversationByID(ctx, conv.ID, "rec")
	require.NoError(t, err)
	require.NotNil(t, detail.Context)
	require.Len(t, detail.Context.Applications, 1)
	assert.Equal(t, application.ID, detail.Context.Applications[0].ID)
	assert.Equal(t, messaging.ApplicationStatusAccepted, *detail.Context.Status)
}

func TestConversationList_UnlockContextHasNoApplications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.recruiterWithJob("rec", "Acme", "job-1", "Backend Engineer")
	f.evidence.AddCandidate("cand", "Lan", "")
	f.evidence.AddUnlock("rec", "cand", baseTime)

	f.openAndSend(t, "rec", "cand", "rec")

	page, err := f.service.GetLatestConversations(ctx, "cand", messaging.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Context)
	assert.Equal(t, messaging.ContextTypeProfileUnlock, page.Items[0].Context.Type)
	assert.Nil(t, page.Items[0].Context.Status)
	assert.Empty(t, page.Items[0].Context.Applications)
}

func TestConversationList_DetailForOutsiderIsInternal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	f.evidence.AddCandidate("cand", "Lan", "")
	conv := f.openAndSend(t, "cand", "rec", "cand")

	projector := messaging.NewConversationListProjector(f.conversations, f.messages, f.evidence, f.evidence, zerolog.Nop())
	detail, err := projector.Detail(ctx, "rec", conv)
	require.NoError(t, err)
	assert.Equal(t, "Lan", detail.OtherParticipant.Name)

	_, err = projector.Detail(ctx, "stranger", conv)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))
}
