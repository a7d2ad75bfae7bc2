package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// registerDemoRoutes adds a few example handlers exercising the wide-event
// API: incremental Set across the handler, structured errors, and a slow
// path for duration-based tail sampling.
func registerDemoRoutes(e *echo.Echo) {
	e.GET("/api/demo/orders/:id", func(c echo.Context) error {
		ev := wideevent.FromContext(c.Request().Context())
		ev.Set(wideevent.Fields{
			"order": wideevent.Fields{"id": c.Param("id")},
		})
		ev.Set(wideevent.Fields{
			"order": wideevent.Fields{"items": 3, "total_cents": 12900},
			"user":  wideevent.Fields{"plan": "premium"},
		})
		return c.JSON(http.StatusOK, map[string]any{"id": c.Param("id"), "items": 3})
	})

	e.POST("/api/demo/pay", func(c echo.Context) error {
		ev := wideevent.FromContext(c.Request().Context())
		serr := &wideevent.StructuredError{
			Status:  http.StatusBadRequest,
			Message: "Payment processing failed",
			Why:     "Card declined",
			Fix:     "Try a different payment method",
			Link:    "https://docs.canopyhq.io/errors/payments",
		}
		ev.Error(serr, wideevent.Fields{"payment": wideevent.Fields{"provider": "acme"}})
		return serr
	})

	e.GET("/api/demo/slow", func(c echo.Context) error {
		ms, _ := strconv.Atoi(c.QueryParam("ms"))
		if ms <= 0 {
			ms = 600
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return c.JSON(http.StatusOK, map[string]any{"slept_ms": ms})
	})
}
