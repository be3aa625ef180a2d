package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/handlers"
	v1 "github.com/hirelink/messaging-api/internal/interfaces/httpserver/routes/v1"
)

// Provider groups the versioned route registrars.
type Provider struct {
	v1 *v1.Routes
}

func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{v1: v1.NewRoutes(handlerProvider)}
}

func (p *Provider) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	p.v1.Register(engine, authMiddleware)
}
