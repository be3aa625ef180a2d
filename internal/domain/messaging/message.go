package messaging

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MessageStatus is the delivery state of a message. Transitions only move forward.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusRead      MessageStatus = "READ"
)

// MaxContentLength is the maximum number of runes in a message body.
const MaxContentLength = 5000

var messageStatusRank = map[MessageStatus]int{
	MessageStatusSent:      1,
	MessageStatusDelivered: 2,
	MessageStatusRead:      3,
}

// CanTransitionTo reports whether target is strictly further along than s.
func (s MessageStatus) CanTransitionTo(target MessageStatus) bool {
	from, ok := messageStatusRank[s]
	if !ok {
		return false
	}
	to, ok := messageStatusRank[target]
	if !ok {
		return false
	}
	return to > from
}

func (s MessageStatus) String() string {
	return string(s)
}

// Message is a single chat message. Content is immutable after creation.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"sender_id"`
	RecipientID    string        `json:"recipient_id"`
	Content        string        `json:"content"`
	SentAt         time.Time     `json:"sent_at"`
	IsRead         bool          `json:"is_read"`
	ReadAt         *time.Time    `json:"read_at,omitempty"`
	DeliveredAt    *time.Time    `json:"delivered_at,omitempty"`
	Status         MessageStatus `json:"status"`
}

// NormalizeContent trims the body and reports whether it is acceptable.
func NormalizeContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxContentLength {
		return trimmed, false
	}
	return trimmed, true
}

// NewMessage builds a SENT message from sender to the other participant.
// The second return value is false when sender is not a participant.
func NewMessage(conv *Conversation, senderID, content string, now time.Time) (*Message, bool) {
	recipientID, ok := conv.OtherParticipant(senderID)
	if !ok {
		return nil, false
	}
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
		SentAt:         now,
		Status:         MessageStatusSent,
	}, true
}

// MarkRead moves the message to READ. Returns false when it was already read.
func (m *Message) MarkRead(at time.Time) bool {
	if m.IsRead || !m.Status.CanTransitionTo(MessageStatusRead) {
		return false
	}
	m.IsRead = true
	m.ReadAt = &at
	m.Status = MessageStatusRead
	return true
}

// MarkDelivered moves a SENT message to DELIVERED.
func (m *Message) MarkDelivered(at time.Time) bool {
	if !m.Status.CanTransitionTo(MessageStatusDelivered) {
		return false
	}
	m.DeliveredAt = &at
	m.Status = MessageStatusDelivered
	return true
}
