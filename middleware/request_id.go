package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the per-request id.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a uuid, reusing an incoming id when the
// caller already set one, and echoes it in the response so log lines can be
// correlated with client reports.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Set("request_id", rid)
		ctx.Writer.Header().Set(RequestIDHeader, rid)
		ctx.Next()
	}
}
