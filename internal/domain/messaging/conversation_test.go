package messaging_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
)

func TestNormalizePair(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		p1, p2 string
	}{
		{"already ordered", "alice", "bob", "alice", "bob"},
		{"reversed", "bob", "alice", "alice", "bob"},
		{"byte-wise comparison", "user-10", "user-9", "user-10", "user-9"},
		{"equal ids", "same", "same", "same", "same"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p1, p2 := messaging.NormalizePair(tt.a, tt.b)
			assert.Equal(t, tt.p1, p1)
			assert.Equal(t, tt.p2, p2)

			q1, q2 := messaging.NormalizePair(tt.b, tt.a)
			assert.Equal(t, p1, q1)
			assert.Equal(t, p2, q2)
		})
	}
}

func TestNewConversation_OrdersParticipants(t *testing.T) {
	ctx := &messaging.Context{Type: messaging.ContextTypeProfileUnlock, ContextID: "tx-1", Title: messaging.ProfileUnlockTitle}
	conv := messaging.NewConversation("zoe", "adam", ctx, baseTime)

	assert.Equal(t, "adam", conv.Participant1)
	assert.Equal(t, "zoe", conv.Participant2)
	assert.NotEmpty(t, conv.ID)
	assert.False(t, conv.HasMessages())

	ctx.Title = "mutated"
	assert.Equal(t, messaging.ProfileUnlockTitle, conv.Context.Title, "initial context must be copied")
}

func TestConversation_OtherParticipant(t *testing.T) {
	conv := messaging.NewConversation("a", "b", nil, baseTime)

	other, ok := conv.OtherParticipant("a")
	assert.True(t, ok)
	assert.Equal(t, "b", other)

	other, ok = conv.OtherParticipant("b")
	assert.True(t, ok)
	assert.Equal(t, "a", other)

	_, ok = conv.OtherParticipant("c")
	assert.False(t, ok)
	assert.False(t, conv.HasParticipant(""))
}

func TestConversation_AcceptsLastMessage(t *testing.T) {
	conv := messaging.NewConversation("a", "b", nil, baseTime)
	assert.True(t, conv.AcceptsLastMessage(baseTime), "no pointer yet")

	id := "m-1"
	at := baseTime.Add(time.Minute)
	conv.LastMessageID = &id
	conv.LastMessageAt = &at

	assert.False(t, conv.AcceptsLastMessage(baseTime), "older")
	assert.False(t, conv.AcceptsLastMessage(at), "equal is not strictly newer")
	assert.True(t, conv.AcceptsLastMessage(at.Add(time.Millisecond)))
}

func TestMessageStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from, to messaging.MessageStatus
		expected bool
	}{
		{"sent to delivered", messaging.MessageStatusSent, messaging.MessageStatusDelivered, true},
		{"sent to read", messaging.MessageStatusSent, messaging.MessageStatusRead, true},
		{"delivered to read", messaging.MessageStatusDelivered, messaging.MessageStatusRead, true},
		{"read to delivered", messaging.MessageStatusRead, messaging.MessageStatusDelivered, false},
		{"delivered to sent", messaging.MessageStatusDelivered, messaging.MessageStatusSent, false},
		{"same status", messaging.MessageStatusSent, messaging.MessageStatusSent, false},
		{"unknown source", messaging.MessageStatus("LOST"), messaging.MessageStatusRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMessage_MarkRead(t *testing.T) {
	conv := messaging.NewConversation("a", "b", nil, baseTime)
	msg, ok := messaging.NewMessage(conv, "a", "hello", baseTime)
	require.True(t, ok)
	assert.Equal(t, "b", msg.RecipientID)
	assert.Equal(t, messaging.MessageStatusSent, msg.Status)

	readAt := baseTime.Add(time.Hour)
	assert.True(t, msg.MarkRead(readAt))
	assert.True(t, msg.IsRead)
	require.NotNil(t, msg.ReadAt)
	assert.Equal(t, readAt, *msg.ReadAt)
	assert.Equal(t, messaging.MessageStatusRead, msg.Status)

	assert.False(t, msg.MarkRead(readAt.Add(time.Hour)), "second read is a no-op")
	assert.Equal(t, readAt, *msg.ReadAt)
	assert.False(t, msg.MarkDelivered(readAt), "read never goes back to delivered")
}

func TestNewMessage_RejectsOutsider(t *testing.T) {
	conv := messaging.NewConversation("a", "b", nil, baseTime)
	_, ok := messaging.NewMessage(conv, "mallory", "hi", baseTime)
	assert.False(t, ok)
}

func TestNormalizeContent(t *testing.T) {
	body, ok := messaging.NormalizeContent("  hi there \n")
	assert.True(t, ok)
	assert.Equal(t, "hi there", body)

	_, ok = messaging.NormalizeContent("   ")
	assert.False(t, ok)

	long := make([]rune, messaging.MaxContentLength+1)
	for i := range long {
		long[i] = 'ă'
	}
	_, ok = messaging.NormalizeContent(string(long))
	assert.False(t, ok)

	_, ok = messaging.NormalizeContent(string(long[:messaging.MaxContentLength]))
	assert.True(t, ok, "limit counts runes, not bytes")
}

func TestShouldReplace(t *testing.T) {
	application := &messaging.Context{Type: messaging.ContextTypeApplication, ContextID: "app-1", ApplicationIDs: []string{"app-1"}, Title: "Backend"}
	twoApplications := &messaging.Context{Type: messaging.ContextTypeApplication, ContextID: "app-2", ApplicationIDs: []string{"app-2", "app-1"}, Title: "Frontend (+1 vị trí khác)"}
	unlock := &messaging.Context{Type: messaging.ContextTypeProfileUnlock, ContextID: "tx-1", Title: messaging.ProfileUnlockTitle}

	tests := []struct {
		name          string
		current, next *messaging.Context
		expected      bool
	}{
		{"nothing resolved", application, nil, false},
		{"nothing resolved on empty", nil, nil, false},
		{"first context", nil, unlock, true},
		{"upgrade unlock to application", unlock, application, true},
		{"never downgrade application to unlock", application, unlock, false},
		{"new application added", application, twoApplications, true},
		{"identical application", application, application.Clone(), false},
		{"identical unlock", unlock, unlock.Clone(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, messaging.ShouldReplace(tt.current, tt.next))
		})
	}
}

func TestContext_SameAsIgnoresAttachedAt(t *testing.T) {
	a := &messaging.Context{Type: messaging.ContextTypeProfileUnlock, ContextID: "tx", Title: "t", AttachedAt: baseTime}
	b := a.Clone()
	b.AttachedAt = baseTime.Add(time.Hour)
	assert.True(t, a.SameAs(b))

	var nilCtx *messaging.Context
	assert.True(t, nilCtx.SameAs(nil))
	assert.False(t, nilCtx.SameAs(a))
}

func TestApplicationStatus_GrantsMessaging(t *testing.T) {
	granted := []messaging.ApplicationStatus{
		messaging.ApplicationStatusPending,
		messaging.ApplicationStatusReviewing,
		messaging.ApplicationStatusScheduledInterview,
		messaging.ApplicationStatusInterviewed,
		messaging.ApplicationStatusAccepted,
		messaging.ApplicationStatusRejected,
	}
	for _, s := range granted {
		assert.True(t, s.GrantsMessaging(), s)
	}

	denied := []messaging.ApplicationStatus{
		messaging.ApplicationStatusSuitable,
		messaging.ApplicationStatusOfferSent,
		messaging.ApplicationStatusOfferDeclined,
		messaging.ApplicationStatus(""),
	}
	for _, s := range denied {
		assert.False(t, s.GrantsMessaging(), s)
	}
}

func TestResolveDisplay(t *testing.T) {
	tests := []struct {
		name    string
		profile messaging.DisplayProfile
		want    messaging.Display
	}{
		{"no profile", nil, messaging.Display{Name: "u-1"}},
		{"candidate", messaging.CandidateDisplay{FullName: "Lan Nguyen", Avatar: "lan.png"}, messaging.Display{Name: "Lan Nguyen", Avatar: "lan.png"}},
		{"candidate without name", messaging.CandidateDisplay{}, messaging.Display{Name: "u-1"}},
		{"recruiter with company", messaging.RecruiterDisplay{FullName: "Minh", Avatar: "minh.png", CompanyName: "Acme", CompanyLogo: "acme.png"}, messaging.Display{Name: "Acme", Avatar: "acme.png"}},
		{"recruiter without company", messaging.RecruiterDisplay{FullName: "Minh", Avatar: "minh.png"}, messaging.Display{Name: "Minh", Avatar: "minh.png"}},
		{"recruiter without anything", messaging.RecruiterDisplay{}, messaging.Display{Name: "u-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messaging.ResolveDisplay("u-1", tt.profile))
		})
	}
}
