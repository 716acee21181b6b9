package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"convert-service/pkg/errno"
)

// Response is the uniform JSON envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope with the payload.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed writes an error envelope, mapping errno codes to HTTP status.
func Failed(ctx *gin.Context, err error) {
	en := asErrno(err)
	ctx.JSON(httpStatusOf(en), Response{
		Code:    en.Code,
		Message: err.Error(),
	})
}

func asErrno(err error) *errno.Errno {
	var en *errno.Errno
	if errors.As(err, &en) {
		return en
	}
	var biz *errno.BizError
	if errors.As(err, &biz) {
		return biz.Errno
	}
	return errno.ErrInternalServer
}

func httpStatusOf(en *errno.Errno) int {
	switch en.Code {
	case errno.ErrUnauthorized.Code:
		return http.StatusUnauthorized
	case errno.ErrNotFound.Code, errno.ErrJobNotFound.Code:
		return http.StatusNotFound
	case errno.ErrJobNotCancellable.Code:
		return http.StatusConflict
	case errno.ErrQueueFull.Code:
		return http.StatusTooManyRequests
	case errno.ErrInternalServer.Code, errno.ErrDatabase.Code, errno.ErrQueueClosed.Code:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
