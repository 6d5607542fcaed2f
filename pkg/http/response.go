package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint writes. Errors travel in Data
// with the failing status in Status; the transport status stays 200 so
// scanner clients always parse the same shape.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, data)
}

func BadRequestResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusBadRequest, data)
}

func InternalServerErrorResponse(c echo.Context) error {
	return respond(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes an AppError with its own status; any other error
// becomes an opaque 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return respond(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
