package api

import (
	"errors"
	"net/http"

	"PriceSentinel/internal/forecast"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/prediction"
	"PriceSentinel/internal/series"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-200 answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the prediction routes.
type Handler struct {
	source prediction.Source
	log    *logger.Logger
}

// RegisterRoutes registers the routes on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/predict", h.Predict)
	e.GET("/healthz", h.Health)
}

// Predict returns a freshly computed prediction artifact.
func (h *Handler) Predict(c echo.Context) error {
	artifact, err := h.source.GetPrediction(c.Request().Context())
	if err != nil {
		status := StatusFor(err)
		h.log.Warn("predict failed", logger.Int("status", status), logger.Error(err))
		return c.JSON(status, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, prediction.EncodePayload(artifact))
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// StatusFor maps a prediction error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, prediction.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, series.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, forecast.ErrForecastUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
