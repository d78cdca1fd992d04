package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/middleware"
	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

// maxUploadBytes caps multipart bodies before the file service applies its own limit.
const maxUploadBytes = 32 << 20

func principalFromContext(c *gin.Context) (*models.Principal, bool) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return principal, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

func queryPtr[T ~string](c *gin.Context, key string) *T {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

func jsonWithMeta(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	response.JSON(c, status, data, pagination, middleware.ExtractMeta(c))
}
