package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// WideEvent is the boundary middleware: it creates the request logger, binds
// it to the request context for handlers to retrieve, and finalizes it
// unconditionally when the request terminates, with the final HTTP status.
// An explicit Emit inside the handler wins; the Finish here is then a no-op.
func WideEvent(core *wideevent.Core) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			logger := core.NewLogger(wideevent.RequestMeta{
				Method:     req.Method,
				Path:       req.URL.Path,
				RequestID:  rid,
				RemoteAddr: c.RealIP(),
				UserAgent:  req.UserAgent(),
			})
			c.SetRequest(req.WithContext(wideevent.NewContext(req.Context(), logger)))

			defer func() {
				if r := recover(); r != nil {
					logger.Error(fmt.Errorf("panic: %v", r))
					logger.Finish(http.StatusInternalServerError)
					panic(r)
				}
			}()

			err := next(c)
			if err != nil {
				logger.Error(err)
				c.Error(err)
			}
			logger.Finish(c.Response().Status)
			return nil
		}
	}
}
