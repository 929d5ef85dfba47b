package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func httpStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// abortRPC writes err as a JSON error with the HTTP equivalent of its gRPC code.
// Internal details are not echoed back to the caller.
func abortRPC(c *gin.Context, err error) {
	st := status.Convert(err)
	code := httpStatus(st.Code())
	msg := st.Message()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": msg, "code": st.Code().String()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codes.InvalidArgument.String()})
}
