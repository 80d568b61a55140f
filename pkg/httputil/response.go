package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dteedee/medix-scheduling/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps domain error codes onto HTTP statuses.
func RespondWithError(c *gin.Context, err error) {
	statusCode := statusFor(errors.Code(err))
	message := "internal server error"

	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
	}

	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    int(errors.Code(err)),
			Message: message,
		},
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest, errors.ErrInvalidSchedule, errors.ErrInvalidDuration:
		return http.StatusBadRequest
	case errors.ErrOverlapsExistingSlot, errors.ErrOverlapsFixedSchedule,
		errors.ErrConflictDetected, errors.ErrLockedByFutureBooking:
		return http.StatusConflict
	case errors.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
