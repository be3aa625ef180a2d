package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/handlers"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/routes/v1/conversation"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/routes/v1/message"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	conversation *conversation.ConversationRoute
	message      *message.MessageRoute
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		conversation: conversation.NewConversationRoute(handlerProvider.Messaging),
		message:      message.NewMessageRoute(handlerProvider.Messaging),
	}
}

// Register attaches all v1 routes under /v1, behind the given auth middleware.
func (r *Routes) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	group := engine.Group("/v1", authMiddleware)
	r.conversation.RegisterRouter(group)
	r.message.RegisterRouter(group)
}
