package requests

import (
	"github.com/hirelink/messaging-api/internal/domain/messaging"
)

type OpenConversationRequest struct {
	UserID string `json:"userId" binding:"required"`
	JobID  string `json:"jobId"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type MarkMessagesReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
}

// UpdateContextRequest sets or clears a conversation context. A missing type clears it.
type UpdateContextRequest struct {
	Type           *string  `json:"type"`
	ContextID      string   `json:"contextId"`
	ApplicationIDs []string `json:"applicationIds"`
	Title          string   `json:"title"`
}

func (r UpdateContextRequest) ToInput() messaging.ContextInput {
	input := messaging.ContextInput{
		ContextID:      r.ContextID,
		ApplicationIDs: r.ApplicationIDs,
		Title:          r.Title,
	}
	if r.Type != nil && *r.Type != "" {
		t := messaging.ContextType(*r.Type)
		input.Type = &t
	}
	return input
}
