package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/domain/query"
)

// MessageStore is a thread-safe message repository for tests and local runs.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[string]*messaging.Message
}

var _ messaging.MessageRepository = (*MessageStore)(nil)

func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string]*messaging.Message)}
}

func cloneMessage(m *messaging.Message) *messaging.Message {
	clone := *m
	if m.ReadAt != nil {
		at := *m.ReadAt
		clone.ReadAt = &at
	}
	if m.DeliveredAt != nil {
		at := *m.DeliveredAt
		clone.DeliveredAt = &at
	}
	return &clone
}

func (s *MessageStore) Append(ctx context.Context, m *messaging.Message) (*messaging.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneMessage(m)
	s.messages[stored.ID] = stored
	return cloneMessage(stored), nil
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationID string, pagination query.Pagination) ([]*messaging.Message, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*messaging.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			items = append(items, cloneMessage(m))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SentAt.Equal(items[j].SentAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].SentAt.After(items[j].SentAt)
	})

	start, end := pagination.Window(len(items))
	return items[start:end], int64(len(items)), nil
}

func (s *MessageStore) MarkRead(ctx context.Context, ids []string, asRecipient string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, id := range ids {
		m, ok := s.messages[id]
		if !ok || m.RecipientID != asRecipient {
			continue
		}
		if m.MarkRead(at) {
			count++
		}
	}
	return count, nil
}

func (s *MessageStore) MarkConversationRead(ctx context.Context, conversationID, asRecipient string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, m := range s.messages {
		if m.ConversationID != conversationID || m.RecipientID != asRecipient {
			continue
		}
		if m.MarkRead(at) {
			count++
		}
	}
	return count, nil
}

func (s *MessageStore) MarkConversationDelivered(ctx context.Context, conversationID, asRecipient string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, m := range s.messages {
		if m.ConversationID != conversationID || m.RecipientID != asRecipient {
			continue
		}
		if m.MarkDelivered(at) {
			count++
		}
	}
	return count, nil
}

func (s *MessageStore) CountUnread(ctx context.Context, conversationIDs []string, userID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(conversationIDs))
	for _, id := range conversationIDs {
		wanted[id] = struct{}{}
	}

	counts := make(map[string]int64, len(conversationIDs))
	for _, m := range s.messages {
		if _, ok := wanted[m.ConversationID]; !ok {
			continue
		}
		if m.RecipientID == userID && !m.IsRead {
			counts[m.ConversationID]++
		}
	}
	return counts, nil
}

func (s *MessageStore) FindByIDs(ctx context.Context, ids []string) ([]*messaging.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*messaging.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.messages[id]; ok {
			result = append(result, cloneMessage(m))
		}
	}
	return result, nil
}

// Transactor runs fn directly; each in-memory call is already atomic.
type Transactor struct{}

var _ messaging.Transactor = Transactor{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
