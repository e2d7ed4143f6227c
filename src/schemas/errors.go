package schemas

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standard API error (RFC 7807).
// It implements the standard Go error interface.
type ErrorResponse struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"` // HTTP Status Code
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// Error implements the error interface.
// This allows ErrorResponse to be returned as a standard Go error.
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// NewErrorResponse creates a general ErrorResponse.
func NewErrorResponse(status int, title, detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     fmt.Sprintf("https://safetrack.dev/errors/%d", status),
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// --- Helper Constructors for Common HTTP Errors ---

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, "Bad Request", detail, instance)
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, "Not Found", detail, instance)
}

// NewInternalError creates a 500 Internal Server Error.
// Note: Be careful not to expose sensitive technical details in production.
func NewInternalError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, "Internal Server Error", detail, instance)
}

// --- Domain-Specific Error Constructors ---

// InvalidSessionError creates a 404 for a lookup against an unknown tracking id.
func InvalidSessionError(sessionID, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://safetrack.dev/invalid-tracking-id",
		Title:    "Invalid Tracking ID",
		Status:   http.StatusNotFound,
		Detail:   fmt.Sprintf("no tracking session with ID %s", sessionID),
		Instance: instance,
	}
}

// SessionExpiredError creates a 410 Gone for a link past its expiry.
func SessionExpiredError(sessionID, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://safetrack.dev/link-expired",
		Title:    "Link Expired",
		Status:   http.StatusGone,
		Detail:   fmt.Sprintf("tracking link %s has expired", sessionID),
		Instance: instance,
	}
}

// InvalidCoordinatesError creates a 400 for an out-of-range coordinate pair.
func InvalidCoordinatesError(detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://safetrack.dev/invalid-coordinates",
		Title:    "Invalid Coordinates",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	}
}

// SendError writes err as a JSON response. Non-ErrorResponse errors are
// wrapped as a 500 so no raw fault ever crosses the HTTP boundary.
func SendError(ctx *gin.Context, err error) {
	resp, ok := err.(*ErrorResponse)
	if !ok {
		resp = NewInternalError(err.Error(), ctx.FullPath())
	}
	slog.Error(resp.Title, "detail", resp.Detail, "instance", resp.Instance)
	ctx.JSON(resp.Status, resp)
}
