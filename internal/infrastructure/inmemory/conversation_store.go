package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// ConversationStore is a thread-safe conversation repository for tests and local runs.
type ConversationStore struct {
	mu     sync.RWMutex
	byID   map[string]*messaging.Conversation
	byPair map[[2]string]string
}

var _ messaging.ConversationRepository = (*ConversationStore)(nil)

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		byID:   make(map[string]*messaging.Conversation),
		byPair: make(map[[2]string]string),
	}
}

func pairKey(userA, userB string) [2]string {
	p1, p2 := messaging.NormalizePair(userA, userB)
	return [2]string{p1, p2}
}

func cloneConversation(c *messaging.Conversation) *messaging.Conversation {
	clone := *c
	clone.Context = c.Context.Clone()
	if c.LastMessageID != nil {
		id := *c.LastMessageID
		clone.LastMessageID = &id
	}
	if c.LastMessageAt != nil {
		at := *c.LastMessageAt
		clone.LastMessageAt = &at
	}
	return &clone
}

func (s *ConversationStore) FindPair(ctx context.Context, userA, userB string) (*messaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pairKey(userA, userB)]
	if !ok {
		return nil, nil
	}
	return cloneConversation(s.byID[id]), nil
}

func (s *ConversationStore) FindByID(ctx context.Context, id string) (*messaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.byID[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "0a2c4e6f-8b1d-4f3a-9c5e-0b2d4f6a8c1e")
	}
	return cloneConversation(conv), nil
}

func (s *ConversationStore) CreatePair(ctx context.Context, userA, userB string, initial *messaging.Context) (*messaging.Conversation, error) {
	if userA == userB {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInvalidOperation, "a conversation needs two distinct participants", nil, "1b3d5f7a-9c2e-4a4b-8d6f-1c3e5a7b9d2f")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(userA, userB)
	if _, exists := s.byPair[key]; exists {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, "conversation already exists for this pair", nil, "2c4e6a8b-1d3f-4b5c-9e7a-2d4f6b8c1e3a")
	}

	conv := messaging.NewConversation(userA, userB, initial, time.Now().UTC())
	s.byID[conv.ID] = conv
	s.byPair[key] = conv.ID
	return cloneConversation(conv), nil
}

func (s *ConversationStore) TouchLastMessage(ctx context.Context, conversationID, messageID string, sentAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[conversationID]
	if !ok {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "3d5f7b9c-2e4a-4c6d-8f1b-3e5a7c9d2f4b")
	}
	if !conv.AcceptsLastMessage(sentAt) {
		return false, nil
	}
	conv.LastMessageID = &messageID
	conv.LastMessageAt = &sentAt
	conv.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *ConversationStore) SetContext(ctx context.Context, conversationID string, c *messaging.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[conversationID]
	if !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "4e6a8c1d-3f5b-4d7e-9a2c-4f6b8d1e3a5c")
	}
	conv.Context = c.Clone()
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

// inbox returns the user's conversations with messages, newest first. Callers hold the lock.
func (s *ConversationStore) inbox(userID string) []*messaging.Conversation {
	var result []*messaging.Conversation
	for _, conv := range s.byID {
		if conv.HasParticipant(userID) && conv.HasMessages() {
			result = append(result, cloneConversation(conv))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].LastMessageAt.Equal(*result[j].LastMessageAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].LastMessageAt.After(*result[j].LastMessageAt)
	})
	return result
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID string, pagination query.Pagination) ([]*messaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.inbox(userID)
	start, end := pagination.Window(len(all))
	return all[start:end], nil
}

func (s *ConversationStore) CountForUser(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.inbox(userID))), nil
}

func (s *ConversationStore) ListAllForUser(ctx context.Context, userID string) ([]*messaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inbox(userID), nil
}
