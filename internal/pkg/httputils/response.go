// Package httputils provides HTTP utility functions.
package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/chopper-ai/chopper-docs/pkg/middleware"
	"github.com/chopper-ai/chopper-docs/pkg/utils/errors"
	"github.com/chopper-ai/chopper-docs/pkg/utils/response"
)

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	var resp *response.Response
	if err != nil {
		resp = response.Err(errors.FromError(err))
	} else {
		resp = response.Success(data)
	}
	defer response.Release(resp)

	if requestID := middleware.GetRequestID(c); requestID != "" {
		resp.WithRequestID(requestID)
	}

	c.JSON(resp.HTTPStatus(), resp)
}
