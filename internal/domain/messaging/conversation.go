package messaging

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ===============================================
// Conversation Context
// ===============================================

type ContextType string

const (
	ContextTypeApplication   ContextType = "APPLICATION"
	ContextTypeProfileUnlock ContextType = "PROFILE_UNLOCK"
)

// Valid reports whether t is one of the known context types.
func (t ContextType) Valid() bool {
	return t == ContextTypeApplication || t == ContextTypeProfileUnlock
}

// Context describes the business reason a conversation exists.
type Context struct {
	Type ContextType `json:"type"`
	// ContextID is the most recent application id (or the unlock transaction id).
	// Single-context consumers still read it.
	ContextID      string    `json:"context_id"`
	ApplicationIDs []string  `json:"application_ids,omitempty"`
	Title          string    `json:"title"`
	AttachedAt     time.Time `json:"attached_at"`
}

// SameAs compares two contexts ignoring AttachedAt.
func (c *Context) SameAs(other *Context) bool {
	if c == nil || other == nil {
		return c == nil && other == nil
	}
	return c.Type == other.Type &&
		c.ContextID == other.ContextID &&
		c.Title == other.Title &&
		slices.Equal(c.ApplicationIDs, other.ApplicationIDs)
}

// Clone returns a deep copy of the context.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	clone := *c
	clone.ApplicationIDs = slices.Clone(c.ApplicationIDs)
	return &clone
}

// ===============================================
// Conversation Structure
// ===============================================

// Conversation is the canonical 1:1 thread between two users.
// Participant1 is always the lexicographically smaller user id.
type Conversation struct {
	ID            string     `json:"id"`
	Participant1  string     `json:"participant1"`
	Participant2  string     `json:"participant2"`
	LastMessageID *string    `json:"last_message_id,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	Context       *Context   `json:"context,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NormalizePair orders two user ids so that the smaller one comes first.
func NormalizePair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

// NewConversation builds an unsaved conversation for a normalized pair.
func NewConversation(userA, userB string, initial *Context, now time.Time) *Conversation {
	p1, p2 := NormalizePair(userA, userB)
	return &Conversation{
		ID:           uuid.NewString(),
		Participant1: p1,
		Participant2: p2,
		Context:      initial.Clone(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.Participant1 == userID || c.Participant2 == userID)
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case c.Participant1:
		return c.Participant2, true
	case c.Participant2:
		return c.Participant1, true
	default:
		return "", false
	}
}

// HasMessages reports whether the conversation has a last-message pointer.
func (c *Conversation) HasMessages() bool {
	return c.LastMessageID != nil
}

// AcceptsLastMessage reports whether a message sent at sentAt should replace the
// current last-message pointer.
func (c *Conversation) AcceptsLastMessage(sentAt time.Time) bool {
	if c.LastMessageID == nil || c.LastMessageAt == nil {
		return true
	}
	return sentAt.After(*c.LastMessageAt)
}
