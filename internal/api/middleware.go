package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/metrics"

	"github.com/labstack/echo/v4"
)

// Recover turns handler panics into a 500 JSON error.
func Recover(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					log.Error("panic", logger.Error(err), logger.String("stack", string(debug.Stack())))
					_ = c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
				}
			}()
			return next(c)
		}
	}
}

// RequestLogging logs method, path, status and latency of each request.
func RequestLogging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			log.Info("request",
				logger.String("method", req.Method),
				logger.String("uri", req.RequestURI),
				logger.String("remote", req.RemoteAddr),
				logger.Int("status", c.Response().Status),
				logger.Duration("latency_ms", time.Since(start)))
			return err
		}
	}
}

// RequestMetrics records per-route latency.
func RequestMetrics(rec *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			rec.RecordLatency("http "+c.Path(), time.Since(start).Seconds())
			return err
		}
	}
}
