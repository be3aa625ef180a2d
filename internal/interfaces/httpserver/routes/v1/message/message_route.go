package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirelink/messaging-api/internal/infrastructure/auth"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/handlers/messaginghandler"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/requests"
	"github.com/hirelink/messaging-api/internal/interfaces/httpserver/responses"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

type MessageRoute struct {
	handler *messaginghandler.MessagingHandler
}

func NewMessageRoute(handler *messaginghandler.MessagingHandler) *MessageRoute {
	return &MessageRoute{handler: handler}
}

func (route *MessageRoute) RegisterRouter(router gin.IRouter) {
	router.POST("/messages/read", route.markMessagesRead)
	router.GET("/access/:candidate_id", route.checkAccess)
}

// markMessagesRead godoc
// @Summary Mark messages as read
// @Description Ids the caller did not receive, or already read, are skipped.
// @Tags Messages API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body requests.MarkMessagesReadRequest true "Message ids"
// @Success 200 {object} responses.UpdatedResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/messages/read [post]
func (route *MessageRoute) markMessagesRead(reqCtx *gin.Context) {
	userID, ok := auth.UserID(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "3a5c7e9f-2b4d-4f6a-a8ca-3b5d7f9a2c4e")
		return
	}
	var req requests.MarkMessagesReadRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "4b6d8f1a-3c5e-4a7b-b9db-4c6e8a1b3d5f")
		return
	}

	count, err := route.handler.MarkMessagesRead(reqCtx.Request.Context(), userID, req.MessageIDs)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to mark messages as read")
		return
	}
	reqCtx.JSON(http.StatusOK, responses.UpdatedResponse{Updated: count})
}

// checkAccess godoc
// @Summary Check messaging access
// @Description Whether the calling recruiter may open a conversation with the candidate, and why.
// @Tags Messages API
// @Security BearerAuth
// @Produce json
// @Param candidate_id path string true "Candidate user ID"
// @Success 200 {object} messaging.AccessDecision
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/access/{candidate_id} [get]
func (route *MessageRoute) checkAccess(reqCtx *gin.Context) {
	userID, ok := auth.UserID(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "5c7e9a2b-4d6f-4b8c-8aec-5d7f9b2c4e6a")
		return
	}

	decision, err := route.handler.CheckAccess(reqCtx.Request.Context(), userID, reqCtx.Param("candidate_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to check messaging access")
		return
	}
	reqCtx.JSON(http.StatusOK, decision)
}
