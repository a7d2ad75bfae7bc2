package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the standard success response shape.
type APIResponse struct {
	Data    any    `json:"data"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path"`
}

// ErrorDetail carries the human fields of a structured error: why it
// happened, how to fix it, and where to read more.
type ErrorDetail struct {
	Why  string `json:"why,omitempty"`
	Fix  string `json:"fix,omitempty"`
	Link string `json:"link,omitempty"`
}

// APIError is the standard error response shape.
type APIError struct {
	Message string       `json:"message"`
	Error   string       `json:"error,omitempty"`
	Path    string       `json:"path"`
	Status  int          `json:"status"`
	Detail  *ErrorDetail `json:"detail,omitempty"`
}

// pathFromContext returns the request path from Echo context.
func pathFromContext(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().URL.Path
}

// OK sends a 200 response with data.
func OK(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, APIResponse{
		Data:    data,
		Status:  http.StatusOK,
		Message: message,
		Path:    pathFromContext(c),
	})
}

// Accepted sends a 202 response with data.
func Accepted(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusAccepted, APIResponse{
		Data:    data,
		Status:  http.StatusAccepted,
		Message: message,
		Path:    pathFromContext(c),
	})
}

// Error sends a JSON error response using APIError.
func Error(c echo.Context, status int, message, errDetail string) error {
	return c.JSON(status, APIError{
		Message: message,
		Error:   errDetail,
		Path:    pathFromContext(c),
		Status:  status,
	})
}

// StructuredError sends a JSON error response carrying the why/fix/link
// triple of a structured error.
func StructuredError(c echo.Context, status int, message string, detail *ErrorDetail) error {
	return c.JSON(status, APIError{
		Message: message,
		Path:    pathFromContext(c),
		Status:  status,
		Detail:  detail,
	})
}

// BadRequest sends 400 with message and error detail.
func BadRequest(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusBadRequest, message, errDetail)
}

// NotFound sends 404 with message and error detail.
func NotFound(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusNotFound, message, errDetail)
}

// InternalError sends 500 with message and error detail.
func InternalError(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusInternalServerError, message, errDetail)
}
