package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the body shape of every API response. Fields beyond Success
// and Message are added per endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse carries a counted list of logs.
type ListResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Logs    any  `json:"logs"`
}

// IngestResponse acknowledges one stored record.
type IngestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LogID   int64  `json:"logId"`
}

// HealthResponse reports that the process is up.
type HealthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with body.
func OK(c echo.Context, body any) error {
	return c.JSON(http.StatusOK, body)
}

// List sends a 200 list response.
func List(c echo.Context, count int, logs any) error {
	return OK(c, ListResponse{Success: true, Count: count, Logs: logs})
}

// Error sends {success:false, message} with status.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// BadRequest sends 400 with message.
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// NotFound sends 404 with message.
func NotFound(c echo.Context, message string) error {
	return Error(c, http.StatusNotFound, message)
}

// InternalError sends 500 with message.
func InternalError(c echo.Context, message string) error {
	return Error(c, http.StatusInternalServerError, message)
}

// HTTPErrorHandler renders errors returned by handlers and by echo itself
// (unknown routes, wrong methods, panics) in the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := http.StatusText(status)
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = Error(c, status, message)
}
