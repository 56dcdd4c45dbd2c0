package middleware

import (
	"fmt"
	"net/http"

	"chefbot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BodySizeLimit 限制請求體大小；聊天訊息只有短文字，超過上限直接拒絕
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			common.LogWarn("Request body rejected",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("limit", maxBytes),
				zap.String("path", c.FullPath()),
			)
			err := common.ErrBodyTooLarge.Wrap(fmt.Errorf("limit is %d bytes", maxBytes))
			status, resp := common.ToResponse(err, false)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		// Content-Length 未知時由 MaxBytesReader 在讀取時截斷
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
