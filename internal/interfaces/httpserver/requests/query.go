package requests

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// GetPaginationFromQuery reads page and limit query parameters.
func GetPaginationFromQuery(reqCtx *gin.Context) (query.Pagination, error) {
	page, err := intQuery(reqCtx, "page", 1)
	if err != nil || page < 1 {
		return query.Pagination{}, platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid page number", err, "6a8c1e3f-5b7d-4f9a-b2c4-6b8d1f3a5c7e")
	}
	limit, err := intQuery(reqCtx, "limit", query.DefaultLimit)
	if err != nil || limit < 1 {
		return query.Pagination{}, platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid limit number", err, "7b9d2f4a-6c8e-4a1b-83d5-7c9e2a4b6d8f")
	}
	return query.NewPagination(page, limit), nil
}

func intQuery(reqCtx *gin.Context, key string, fallback int) (int, error) {
	raw := reqCtx.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
