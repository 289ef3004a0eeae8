package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

var statusByKind = map[Kind]int{
	KindInvalidRange:  http.StatusBadRequest,
	KindValidation:    http.StatusBadRequest,
	KindInvalidStatus: http.StatusBadRequest,
	KindSlotConflict:  http.StatusConflict,
	KindConflict:      http.StatusConflict,
	KindNotFound:      http.StatusNotFound,
	KindUnauthorized:  http.StatusUnauthorized,
	KindForbidden:     http.StatusForbidden,
	KindRateLimited:   http.StatusTooManyRequests,
}

// StatusFor maps a kind to its HTTP status. Unknown kinds are 500.
func StatusFor(kind Kind) int {
	if s, ok := statusByKind[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

// Abort writes the error body and stops the handler chain.
func Abort(c *gin.Context, kind Kind, code, message string) {
	c.AbortWithStatusJSON(StatusFor(kind), HTTPError{
		Code:    code,
		Kind:    kind,
		Message: message,
	})
}

// FromError renders a BusinessError with its kind status. Other errors
// become a generic storage failure without leaking details.
func FromError(c *gin.Context, err error, message string) {
	var be BusinessError
	if !errors.As(err, &be) {
		c.JSON(http.StatusInternalServerError, HTTPError{
			Code:    "storage_failure",
			Kind:    KindStorageFailure,
			Message: "Internal error.",
		})
		return
	}
	c.JSON(StatusFor(be.Kind), HTTPError{
		Code:    be.Code,
		Kind:    be.Kind,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, HTTPError{Code: code, Kind: KindValidation, Message: message})
}

func NotFound(c *gin.Context, code, message string) {
	c.JSON(http.StatusNotFound, HTTPError{Code: code, Kind: KindNotFound, Message: message})
}

func Internal(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, HTTPError{Code: code, Kind: KindStorageFailure, Message: message})
}

func Unauthorized(c *gin.Context, code, message string) {
	c.JSON(http.StatusUnauthorized, HTTPError{Code: code, Kind: KindUnauthorized, Message: message})
}
