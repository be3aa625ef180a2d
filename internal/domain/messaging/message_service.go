package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// MessageService owns the message lifecycle: SENT -> DELIVERED -> READ.
type MessageService struct {
	conversations ConversationRepository
	messages      MessageRepository
	tx            Transactor
	log           zerolog.Logger
	now           Clock
}

func NewMessageService(conversations ConversationRepository, messages MessageRepository, tx Transactor, log zerolog.Logger, now Clock) *MessageService {
	if now == nil {
		now = time.Now
	}
	return &MessageService{
		conversations: conversations,
		messages:      messages,
		tx:            tx,
		log:           log.With().Str("component", "message-service").Logger(),
		now:           now,
	}
}

// participantConversation loads the conversation and checks that userID belongs to it.
func (s *MessageService) participantConversation(ctx context.Context, userID, conversationID string) (*Conversation, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if !conv.HasParticipant(userID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "caller is not a participant of this conversation", nil, "5c1e7a3b-2f4d-4e8a-9b6c-0d1f2e3a4b5c")
	}
	return conv, nil
}

// Send stores a message from sender to the other participant and moves the
// conversation's last-message pointer in the same transaction.
func (s *MessageService) Send(ctx context.Context, senderID, conversationID, content string) (*Message, error) {
	body, ok := NormalizeContent(content)
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "message content must be between 1 and 5000 characters", nil, "8a2d4f6b-1c3e-4a5b-9d7f-2e4c6a8b0d1f")
	}

	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	msg, ok := NewMessage(conv, senderID, body, s.now().UTC())
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "sender is not a participant of this conversation", nil, "3f9b1d7e-6a2c-4c8e-b5d1-7a3e9c1f5b2d")
	}

	var stored *Message
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var appendErr error
		stored, appendErr = s.messages.Append(txCtx, msg)
		if appendErr != nil {
			return appendErr
		}
		moved, touchErr := s.conversations.TouchLastMessage(txCtx, conv.ID, stored.ID, stored.SentAt)
		if touchErr != nil {
			return touchErr
		}
		if !moved {
			s.log.Debug().
				Str("conversation_id", conv.ID).
				Str("message_id", stored.ID).
				Msg("last message pointer already newer, not moved")
		}
		return nil
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to send message")
	}

	return stored, nil
}

// ListMessages returns one page of messages, newest first, plus the total count.
func (s *MessageService) ListMessages(ctx context.Context, callerID, conversationID string, pagination query.Pagination) ([]*Message, int64, error) {
	if _, err := s.participantConversation(ctx, callerID, conversationID); err != nil {
		return nil, 0, err
	}

	items, total, err := s.messages.ListByConversation(ctx, conversationID, pagination)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list messages")
	}
	return items, total, nil
}

// MarkRead marks the given messages read for the caller. Ids the caller did not
// receive are skipped.
func (s *MessageService) MarkRead(ctx context.Context, callerID string, messageIDs []string) (int64, error) {
	ids := functional.Unique(functional.Filter(messageIDs, func(id string) bool { return id != "" }))
	if len(ids) == 0 {
		return 0, nil
	}

	count, err := s.messages.MarkRead(ctx, ids, callerID, s.now().UTC())
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to mark messages as read")
	}
	return count, nil
}

func (s *MessageService) MarkConversationRead(ctx context.Context, callerID, conversationID string) (int64, error) {
	if _, err := s.participantConversation(ctx, callerID, conversationID); err != nil {
		return 0, err
	}

	count, err := s.messages.MarkConversationRead(ctx, conversationID, callerID, s.now().UTC())
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to mark conversation as read")
	}
	return count, nil
}

// MarkConversationDelivered moves the caller's SENT messages to DELIVERED.
func (s *MessageService) MarkConversationDelivered(ctx context.Context, callerID, conversationID string) (int64, error) {
	if _, err := s.participantConversation(ctx, callerID, conversationID); err != nil {
		return 0, err
	}

	count, err := s.messages.MarkConversationDelivered(ctx, conversationID, callerID, s.now().UTC())
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to mark conversation as delivered")
	}
	return count, nil
}
