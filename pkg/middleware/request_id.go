package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/chopper-ai/chopper-docs/pkg/utils/id"
)

// RequestID header and context key names.
const (
	HeaderXRequestID    = "X-Request-ID"
	ContextKeyRequestID = "request_id"
)

// RequestIDConfig defines the config for RequestID middleware.
type RequestIDConfig struct {
	// Header is the header name to use for request ID.
	// Default: "X-Request-ID"
	Header string

	// Generator is the function to generate request IDs.
	// Default: monotonic ULID
	Generator func() string
}

// DefaultRequestIDConfig is the default RequestID middleware config.
var DefaultRequestIDConfig = RequestIDConfig{
	Header:    HeaderXRequestID,
	Generator: id.NewRequestID,
}

// RequestID returns a middleware that adds a unique request ID to each request.
// The request ID is added to:
//   - Response header (X-Request-ID)
//   - Gin context (can be retrieved with GetRequestID)
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig returns a RequestID middleware with custom config.
func RequestIDWithConfig(config RequestIDConfig) gin.HandlerFunc {
	if config.Header == "" {
		config.Header = HeaderXRequestID
	}
	if config.Generator == nil {
		config.Generator = id.NewRequestID
	}

	return func(c *gin.Context) {
		// Reuse an incoming request ID when the client supplies one
		requestID := c.GetHeader(config.Header)
		if requestID == "" {
			requestID = config.Generator()
		}

		c.Header(config.Header, requestID)
		c.Set(ContextKeyRequestID, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the gin context.
// Returns an empty string if no request ID is set.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyRequestID); ok {
		if requestID, ok := v.(string); ok {
			return requestID
		}
	}
	return ""
}
