package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the otelgin server-span middleware followed by a handler
// that tags the span with the request id and, once the chain has run, the
// authenticated username. Spans are named after the route pattern.
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		traceAttributes,
	}
}

// traceAttributes runs inside the otelgin span, so the span is still open
// after c.Next returns.
func traceAttributes(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}

	if id := c.GetString(RequestIDKey); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}

	c.Next()

	if perms, ok := GetPermissions(c); ok && perms.Username != "" {
		span.SetAttributes(attribute.String("username", perms.Username))
	}
}
