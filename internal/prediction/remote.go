package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"PriceSentinel/internal/forecast"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/series"

	"github.com/go-resty/resty/v2"
)

// fallbackMessage is used when the server's error body carries no message.
const fallbackMessage = "couldn't fetch Bitcoin price prediction at the moment"

// RemoteError is a non-200 answer from the prediction service. Its text is
// the server's own message; Unwrap exposes the matching error kind.
type RemoteError struct {
	Status  int
	Message string
	kind    error
}

func (e *RemoteError) Error() string { return e.Message }
func (e *RemoteError) Unwrap() error { return e.kind }

// RemoteClient fetches predictions from a running GET /predict endpoint.
type RemoteClient struct {
	client *resty.Client
	url    string
}

// NewRemoteClient creates a client for the full prediction URL.
func NewRemoteClient(url string, timeout time.Duration) *RemoteClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &RemoteClient{client: client, url: url}
}

func (c *RemoteClient) GetPrediction(ctx context.Context) (*model.PredictionArtifact, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("error getting prediction: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, remoteError(resp.StatusCode(), resp.Body())
	}
	return DecodePayload(resp.Body())
}

func remoteError(status int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	msg := fallbackMessage
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}

	var kind error
	switch status {
	case http.StatusUnprocessableEntity:
		kind = ErrInsufficientHistory
	case http.StatusServiceUnavailable:
		kind = series.ErrStorageUnavailable
	case http.StatusBadGateway:
		kind = forecast.ErrForecastUnavailable
	}
	return &RemoteError{Status: status, Message: msg, kind: kind}
}
