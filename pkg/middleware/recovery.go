package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/chopper-ai/chopper-docs/pkg/utils/errors"
	"github.com/chopper-ai/chopper-docs/pkg/utils/response"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// PrintStack controls whether the stack trace is logged.
	// Default: true
	PrintStack bool
}

// DefaultRecoveryConfig is the default Recovery middleware config.
var DefaultRecoveryConfig = RecoveryConfig{
	PrintStack: true,
}

// Recovery returns a middleware that recovers from panics and returns
// a 500 response instead of crashing the server.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(DefaultRecoveryConfig)
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fields := []any{
					"error", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", GetRequestID(c),
				}
				if config.PrintStack {
					fields = append(fields, "stack", string(debug.Stack()))
				}
				logger.Errorw("panic recovered", fields...)

				resp := response.Err(errors.ErrInternal)
				defer response.Release(resp)
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()
	}
}
