package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/auth"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/handlers/messaginghandler"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/requests"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/responses"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

type ConversationRoute struct {
	handler *messaginghandler.MessagingHandler
}

func NewConversationRoute(handler *messaginghandler.MessagingHandler) *ConversationRoute {
	return &ConversationRoute{handler: handler}
}

func (route *ConversationRoute) RegisterRouter(router gin.IRouter) {
	conversations := router.Group("/conversations")
	conversations.GET("", route.listConversations)
	conversations.POST("", route.openConversation)
	conversations.GET("/:conversation_id", route.getConversation)
	conversations.PUT("/:conversation_id/context", route.updateContext)
	conversations.GET("/:conversation_id/messages", route.listMessages)
	conversations.POST("/:conversation_id/messages", route.sendMessage)
	conversations.POST("/:conversation_id/read", route.markRead)
	conversations.POST("/:conversation_id/delivered", route.markDelivered)
}

func callerID(reqCtx *gin.Context) (string, bool) {
	id, ok := auth.UserID(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "8c1e3a5b-7d9f-4b2c-a4e6-8d1f3b5c7e9a")
	}
	return id, ok
}

// listConversations godoc
// @Summary List conversations
// @Description Inbox for the caller: conversations with at least one message, newest first.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param search query string false "Case-insensitive match on the other participant's name"
// @Param page query int false "Page number, starting at 1"
// @Param limit query int false "Page size"
// @Success 200 {object} messaging.ConversationPage
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/conversations [get]
func (route *ConversationRoute) listConversations(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	pagination, err := requests.GetPaginationFromQuery(reqCtx)
	if err != nil {
		responses.HandleError(reqCtx, err, "invalid pagination")
		return
	}

	page, err := route.handler.ListConversations(reqCtx.Request.Context(), userID, messaging.ListParams{
		Search:     reqCtx.Query("search"),
		Pagination: pagination,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list conversations")
		return
	}
	reqCtx.JSON(http.StatusOK, page)
}

// openConversation godoc
// @Summary Create or get a conversation
// @Description Returns the caller's conversation with userId, creating it on first contact.
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body requests.OpenConversationRequest true "Other participant and optional job"
// @Success 200 {object} messaging.Conversation
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse "Recruiter has no access; error.reason holds the code"
// @Failure 422 {object} responses.ErrorResponse "Conversation with yourself"
// @Router /v1/conversations [post]
func (route *ConversationRoute) openConversation(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	var req requests.OpenConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "9d2f4b6c-8e1a-4c3d-b5f7-9e2a4c6d8f1b")
		return
	}

	conv, err := route.handler.OpenConversation(reqCtx.Request.Context(), userID, req.UserID, req.JobID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to open conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, conv)
}

// getConversation godoc
// @Summary Get a conversation
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} messaging.ConversationDetail
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [get]
func (route *ConversationRoute) getConversation(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	detail, err := route.handler.GetConversation(reqCtx.Request.Context(), userID, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to get conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, detail)
}

// updateContext godoc
// @Summary Override a conversation context
// @Description Sets the context directly, without the automatic priority rule. Omit type to clear it.
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body requests.UpdateContextRequest true "New context"
// @Success 200 {object} messaging.Conversation
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/context [put]
func (route *ConversationRoute) updateContext(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	var req requests.UpdateContextRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "1e3a5c7d-9f2b-4d4e-86a8-1f3b5d7e9a2c")
		return
	}

	conv, err := route.handler.UpdateContext(reqCtx.Request.Context(), userID, reqCtx.Param("conversation_id"), req.ToInput())
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to update conversation context")
		return
	}
	reqCtx.JSON(http.StatusOK, conv)
}

// listMessages godoc
// @Summary List messages
// @Description Newest first.
// @Tags Messages API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param page query int false "Page number, starting at 1"
// @Param limit query int false "Page size"
// @Success 200 {object} messaging.MessagePage
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/messages [get]
func (route *ConversationRoute) listMessages(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	pagination, err := requests.GetPaginationFromQuery(reqCtx)
	if err != nil {
		responses.HandleError(reqCtx, err, "invalid pagination")
		return
	}

	page, err := route.handler.ListMessages(reqCtx.Request.Context(), userID, reqCtx.Param("conversation_id"), pagination)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list messages")
		return
	}
	reqCtx.JSON(http.StatusOK, page)
}

// sendMessage godoc
// @Summary Send a message
// @Tags Messages API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body requests.SendMessageRequest true "Message body"
// @Success 201 {object} messaging.Message
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/messages [post]
func (route *ConversationRoute) sendMessage(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	var req requests.SendMessageRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "2f4b6d8e-1a3c-4e5f-97b9-2a4c6e8f1b3d")
		return
	}

	msg, err := route.handler.SendMessage(reqCtx.Request.Context(), userID, reqCtx.Param("conversation_id"), req.Content)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to send message")
		return
	}
	reqCtx.JSON(http.StatusCreated, msg)
}

// markRead godoc
// @Summary Mark a conversation as read
// @Tags Messages API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} responses.UpdatedResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/read [post]
func (route *ConversationRoute) markRead(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	count, err := route.handler.MarkConversationRead(reqCtx.Request.Context(), userID, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to mark conversation as read")
		return
	}
	reqCtx.JSON(http.StatusOK, responses.UpdatedResponse{Updated: count})
}

// markDelivered godoc
// @Summary Mark a conversation as delivered
// @Tags Messages API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} responses.UpdatedResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/delivered [post]
func (route *ConversationRoute) markDelivered(reqCtx *gin.Context) {
	userID, ok := callerID(reqCtx)
	if !ok {
		return
	}
	count, err := route.handler.MarkConversationDelivered(reqCtx.Request.Context(), userID, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to mark conversation as delivered")
		return
	}
	reqCtx.JSON(http.StatusOK, responses.UpdatedResponse{Updated: count})
}
