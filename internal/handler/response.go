package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/pkg/httputil"
)

type Response = httputil.Response

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Fail writes err through the shared AppError mapping.
func Fail(c *gin.Context, err error) {
	httputil.RespondWithError(c, err)
}
