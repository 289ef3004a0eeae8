package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/middleware"
)

var messages = map[string]string{
	"invalid_range":          "Invalid date range. Use from and to as YYYY-MM-DD with from <= to.",
	"invalid_timestamp":      "startAt and endAt must be RFC 3339 timestamps.",
	"past_slot":              "Cannot book a slot in the past.",
	"outside_business_hours": "Slots must be between 09:00 and 17:00.",
	"invalid_duration":       "Slots must be exactly 30 minutes long.",
	"misaligned_slot":        "Slots must start on the hour or half hour.",
	"notes_too_long":         "Notes must be at most 500 characters.",
	"slot_conflict":          "This slot is already booked.",
	"invalid_status":         "Status must be one of confirmed, cancelled, completed.",
	"booking_not_found":      "Booking not found.",
	"email_taken":            "An account with this email already exists.",
	"invalid_email_domain":   "The email domain does not look valid.",
	"invalid_credentials":    "Invalid email or password.",
	"password_too_long":      "Password must be at most 72 bytes.",
}

// writeError renders business errors with their kind status. Anything else
// is logged and returned as a generic storage failure.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	if httperr.KindOf(err) == httperr.KindStorageFailure {
		log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.ContextRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	httperr.FromError(c, err, messages[httperr.CodeOf(err)])
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperr.HTTPError{
		Code:    "invalid_request",
		Kind:    httperr.KindValidation,
		Message: err.Error(),
	})
}
