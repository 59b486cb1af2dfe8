package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PriceSentinel/internal/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteClient_GetPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		json.NewEncoder(w).Encode(EncodePayload(sampleArtifact()))
	}))
	defer srv.Close()

	a, err := NewRemoteClient(srv.URL+"/predict", time.Second).GetPrediction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "buy", string(a.Signal))
}

func TestRemoteClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"forecast unavailable: status 500"}`))
	}))
	defer srv.Close()

	_, err := NewRemoteClient(srv.URL, time.Second).GetPrediction(context.Background())
	require.Error(t, err)
	assert.Equal(t, "forecast unavailable: status 500", err.Error())
	assert.ErrorIs(t, err, forecast.ErrForecastUnavailable)
}

func TestRemoteClient_ServerErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewRemoteClient(srv.URL, time.Second).GetPrediction(context.Background())
	require.Error(t, err)
	assert.Equal(t, fallbackMessage, err.Error())
}

func TestRemoteClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemoteClient(url, time.Second).GetPrediction(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting prediction")
}
