package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appctx "prodtrack/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var tracer = otel.Tracer("prodtrack/http")

// Trace middleware adds request tracing context and opens a server span.
// An inbound X-Trace-ID is kept; otherwise the span's trace ID is used when
// a tracer provider is installed, or a random one when it is not.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			),
		)
		defer span.End()

		tc := appctx.NewTraceContext(c.GetHeader(HeaderRequestID))
		if inbound := c.GetHeader(HeaderTraceID); inbound != "" {
			tc.TraceID = inbound
		} else if sc := span.SpanContext(); sc.HasTraceID() {
			tc.TraceID = sc.TraceID().String()
		}

		c.Request = c.Request.WithContext(appctx.WithTrace(ctx, tc))

		c.Set("trace_id", tc.TraceID)
		c.Set("request_id", tc.RequestID)

		c.Header(HeaderRequestID, tc.RequestID)
		c.Header(HeaderTraceID, tc.TraceID)

		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}
