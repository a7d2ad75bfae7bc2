package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/canopyhq/canopylog/internal/response"
	"github.com/canopyhq/canopylog/internal/wideevent"
)

// ErrorHandler converts handler errors into JSON responses. A raised
// structured error carries its status, message and the why/fix/link triple to
// the caller; anything else maps to the plain error shape without leaking
// internals.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var se *wideevent.StructuredError
		if errors.As(err, &se) {
			status := se.Status
			if status == 0 {
				status = http.StatusInternalServerError
			}
			var detail *response.ErrorDetail
			if se.Why != "" || se.Fix != "" || se.Link != "" {
				detail = &response.ErrorDetail{Why: se.Why, Fix: se.Fix, Link: se.Link}
			}
			if err := response.StructuredError(c, status, se.Message, detail); err != nil {
				log.Warn().Err(err).Msg("write error response")
			}
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if err := response.Error(c, he.Code, fmt.Sprintf("%v", he.Message), ""); err != nil {
				log.Warn().Err(err).Msg("write error response")
			}
			return
		}

		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled request error")
		if err := response.InternalError(c, "internal server error", ""); err != nil {
			log.Warn().Err(err).Msg("write error response")
		}
	}
}
