package responses

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

type ErrorResponse = platformerrors.HTTPErrorResponse

type UpdatedResponse struct {
	Updated int64 `json:"updated"`
}

// HandleError writes err using the request-scoped logger.
func HandleError(reqCtx *gin.Context, err error, message string) {
	ctx := reqCtx.Request.Context()
	log := *zerolog.Ctx(ctx)
	platformerrors.WriteError(reqCtx, platformerrors.AsError(ctx, platformerrors.LayerRoute, err, message), log)
}

// HandleNewError writes a fresh route-level error.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message, code string) {
	ctx := reqCtx.Request.Context()
	log := *zerolog.Ctx(ctx)
	platformerrors.WriteHTTPError(reqCtx, platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, code), log)
}
