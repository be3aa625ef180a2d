package messaginghandler

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/infrastructure/metrics"
	"github.com/hirelink/messaging-api/internal/infrastructure/observability"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// MessagingHandler runs messaging use cases with tracing and metrics around them.
type MessagingHandler struct {
	service   *messaging.Service
	sanitizer *observability.Sanitizer
}

func NewMessagingHandler(service *messaging.Service, sanitizer *observability.Sanitizer) *MessagingHandler {
	return &MessagingHandler{service: service, sanitizer: sanitizer}
}

func finish(ctx context.Context, err error) {
	if err != nil {
		observability.RecordError(ctx, err)
	}
}

func (h *MessagingHandler) CheckAccess(ctx context.Context, recruiterID, candidateID string) (messaging.AccessDecision, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.CheckAccess")
	defer span.End()
	span.SetAttributes(h.sanitizer.PairAttrs(recruiterID, candidateID, "")...)

	decision, err := h.service.CheckMessagingAccess(ctx, recruiterID, candidateID)
	finish(ctx, err)
	if err != nil {
		return decision, err
	}
	observability.AddSpanAttributes(ctx,
		attribute.String("messaging.access.reason", string(decision.Reason)),
		attribute.Bool("messaging.access.allowed", decision.CanMessage),
	)
	metrics.RecordAccessDecision(string(decision.Reason), decision.CanMessage)
	return decision, nil
}

func (h *MessagingHandler) OpenConversation(ctx context.Context, callerID, otherUserID, jobID string) (*messaging.Conversation, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.OpenConversation")
	defer span.End()
	span.SetAttributes(h.sanitizer.PairAttrs(callerID, otherUserID, jobID)...)

	conv, err := h.service.CreateOrGetConversation(ctx, callerID, otherUserID, jobID)
	finish(ctx, err)

	contextType := ""
	if conv != nil && conv.Context != nil {
		contextType = string(conv.Context.Type)
	}
	if conv != nil {
		observability.AddSpanAttributes(ctx,
			attribute.String(observability.AttrConversationID, conv.ID),
			attribute.String(observability.AttrContextType, contextType),
		)
	}
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		if reason := pe.ContextString(platformerrors.ReasonKey); reason != "" {
			metrics.RecordAccessDecision(reason, false)
		}
	}
	metrics.RecordConversationOpened(contextType, err)
	return conv, err
}

func (h *MessagingHandler) GetConversation(ctx context.Context, callerID, conversationID string) (*messaging.ConversationDetail, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.GetConversation")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs(conversationID, callerID)...)

	detail, err := h.service.GetConversationByID(ctx, conversationID, callerID)
	finish(ctx, err)
	return detail, err
}

func (h *MessagingHandler) ListConversations(ctx context.Context, callerID string, params messaging.ListParams) (*messaging.ConversationPage, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.ListConversations")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs("", callerID)...)
	observability.AddSpanAttributes(ctx, attribute.Bool("messaging.search", params.Search != ""))

	page, err := h.service.GetLatestConversations(ctx, callerID, params)
	finish(ctx, err)
	return page, err
}

func (h *MessagingHandler) UpdateContext(ctx context.Context, callerID, conversationID string, input messaging.ContextInput) (*messaging.Conversation, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.UpdateContext")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs(conversationID, callerID)...)

	conv, err := h.service.UpdateConversationContext(ctx, conversationID, callerID, input)
	finish(ctx, err)
	return conv, err
}

func (h *MessagingHandler) ListMessages(ctx context.Context, callerID, conversationID string, pagination query.Pagination) (*messaging.MessagePage, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.ListMessages")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs(conversationID, callerID)...)

	page, err := h.service.GetConversationMessages(ctx, callerID, conversationID, pagination)
	finish(ctx, err)
	return page, err
}

func (h *MessagingHandler) SendMessage(ctx context.Context, callerID, conversationID, content string) (*messaging.Message, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.SendMessage")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs(conversationID, callerID)...)

	msg, err := h.service.SendMessage(ctx, callerID, conversationID, content)
	finish(ctx, err)
	metrics.RecordMessageSent(err)
	return msg, err
}

func (h *MessagingHandler) MarkMessagesRead(ctx context.Context, callerID string, messageIDs []string) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.MarkMessagesRead")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs("", callerID)...)
	span.SetAttributes(attribute.Int("messaging.message_ids", len(messageIDs)))

	count, err := h.service.MarkMessagesAsRead(ctx, callerID, messageIDs)
	finish(ctx, err)
	metrics.RecordMessagesMarked(string(messaging.MessageStatusRead), count)
	return count, err
}

func (h *MessagingHandler) MarkConversationRead(ctx context.Context, callerID, conversationID string) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.MarkConversationRead")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs(conversationID, callerID)...)

	count, err := h.service.MarkConversationAsRead(ctx, callerID, conversationID)
	finish(ctx, err)
	metrics.RecordMessagesMarked(string(messaging.MessageStatusRead), count)
	return count, err
}

func (h *MessagingHandler) MarkConversationDelivered(ctx context.Context, callerID, conversationID string) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "messaging.MarkConversationDelivered")
	defer span.End()
	span.SetAttributes(h.sanitizer.ConversationAttrs(conversationID, callerID)...)

	count, err := h.service.MarkConversationAsDelivered(ctx, callerID, conversationID)
	finish(ctx, err)
	metrics.RecordMessagesMarked(string(messaging.MessageStatusDelivered), count)
	return count, err
}
