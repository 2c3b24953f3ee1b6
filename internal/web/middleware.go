package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zachkp/showcase/internal/analytics"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/Zachkp/showcase/internal/web"

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := c.GetString(viewIDKey); id != "" {
			fields = append(fields, zap.String("view_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			logger.Warn("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// tracing starts a server span per request on the global tracer provider.
func tracing() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}
	}
}

// untrackedPrefixes are never recorded as visits.
var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/admin/",
	"/favicon",
	"/privacy",
	"/live",
	"/contact",
	"/projects/",
}

// visitorTracking records page views with hashed addresses. Requests that
// send DNT: 1 are not recorded.
func visitorTracking(rec *analytics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || c.GetHeader("DNT") == "1" || untracked(path) {
			c.Next()
			return
		}
		rec.Record(c.ClientIP(), c.GetHeader("User-Agent"), path)
		c.Next()
	}
}

func untracked(path string) bool {
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
