package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/talktorobson/prima-facie-sub001/internal/errors"
	"github.com/talktorobson/prima-facie-sub001/internal/types"
)

// TenantMiddleware resolves the law firm scope of a request. Every billing
// route is firm-scoped; requests without a firm id are rejected before
// reaching a handler.
func TenantMiddleware(c *gin.Context) {
	lawFirmID := c.GetHeader(types.HeaderLawFirmID)
	if lawFirmID == "" {
		c.Error(ierr.NewError("missing law firm header").
			WithHintf("O cabeçalho %s é obrigatório", types.HeaderLawFirmID).
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}

	ctx := types.SetLawFirmID(c.Request.Context(), lawFirmID)
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
