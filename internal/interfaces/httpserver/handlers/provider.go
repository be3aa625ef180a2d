package handlers

import (
	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/observability"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/handlers/messaginghandler"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Messaging *messaginghandler.MessagingHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(service *messaging.Service, sanitizer *observability.Sanitizer) *Provider {
	return &Provider{
		Messaging: messaginghandler.NewMessagingHandler(service, sanitizer),
	}
}
