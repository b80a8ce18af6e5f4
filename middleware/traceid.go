package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const traceIDKey = "traceID"

// TraceIDHeader carries the request trace id. Clients may supply their
// own uuid to correlate app logs with server logs; anything else is
// replaced.
const TraceIDHeader = "X-Trace-Id"

// TraceID attaches a trace id to every request and echoes it in the
// response header.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(TraceIDHeader))
		if id == "" || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.Set(traceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

// GetTraceID returns the request's trace id, or "" when the middleware
// did not run.
func GetTraceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}
