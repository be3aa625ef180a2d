package messaging

import (
	"context"
	"time"

	"github.com/hirelink/messaging-api/internal/domain/query"
)

// ConversationRepository stores conversations keyed by their normalized participant pair.
type ConversationRepository interface {
	// FindPair returns nil, nil when the pair has no conversation.
	FindPair(ctx context.Context, userA, userB string) (*Conversation, error)
	FindByID(ctx context.Context, id string) (*Conversation, error)
	CreatePair(ctx context.Context, userA, userB string, initial *Context) (*Conversation, error)
	// TouchLastMessage moves the last-message pointer when sentAt is newer than the stored one.
	TouchLastMessage(ctx context.Context, conversationID, messageID string, sentAt time.Time) (bool, error)
	SetContext(ctx context.Context, conversationID string, c *Context) error
	ListForUser(ctx context.Context, userID string, pagination query.Pagination) ([]*Conversation, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
	ListAllForUser(ctx context.Context, userID string) ([]*Conversation, error)
}

// MessageRepository stores chat messages and their read state.
type MessageRepository interface {
	Append(ctx context.Context, m *Message) (*Message, error)
	ListByConversation(ctx context.Context, conversationID string, pagination query.Pagination) ([]*Message, int64, error)
	MarkRead(ctx context.Context, ids []string, asRecipient string, at time.Time) (int64, error)
	MarkConversationRead(ctx context.Context, conversationID, asRecipient string, at time.Time) (int64, error)
	MarkConversationDelivered(ctx context.Context, conversationID, asRecipient string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, conversationIDs []string, userID string) (map[string]int64, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Message, error)
}

// Transactor runs fn inside a store transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PairLocker serializes first-contact creation for a pair of users.
type PairLocker interface {
	WithPairLock(ctx context.Context, userA, userB string, fn func(ctx context.Context) error) error
}
