package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReverseGeocoder(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/reverse-geocode-client", r.URL.Path)
		assert.Equal(t, "40.7128", r.URL.Query().Get("latitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"New York","countryCode":"US","locality":"Manhattan"}`))
	}))
	defer server.Close()

	g := NewReverseGeocoder(GeocoderConfig{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())

	place, err := g.Reverse(context.Background(), testCoords)
	require.NoError(t, err)
	assert.Equal(t, Place{City: "New York", CountryCode: "US"}, place)

	// Same rounded key is served from cache.
	_, err = g.Reverse(context.Background(), models.Coordinates{Latitude: 40.71281, Longitude: -74.00601})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReverseGeocoderFailures(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		g := NewReverseGeocoder(GeocoderConfig{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())
		_, err := g.Reverse(context.Background(), testCoords)

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	})

	t.Run("empty place", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"city":"","countryCode":""}`))
		}))
		defer server.Close()

		g := NewReverseGeocoder(GeocoderConfig{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())
		_, err := g.Reverse(context.Background(), testCoords)
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		g := NewReverseGeocoder(GeocoderConfig{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())
		_, err := g.Reverse(context.Background(), testCoords)

		var netErr *NetworkError
		assert.True(t, errors.As(err, &netErr))
	})
}

func TestIPGeolocator(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","lat":51.5074,"lon":-0.1278}`))
	}))
	defer server.Close()

	g := NewIPGeolocator(server.URL, zap.NewNop())
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	opts := models.PositionOptions{Timeout: time.Second, MaxAge: time.Minute}
	pos, err := g.CurrentPosition(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: 51.5074, Longitude: -0.1278}, pos)

	now = now.Add(30 * time.Second)
	_, err = g.CurrentPosition(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "position younger than MaxAge is reused")

	now = now.Add(time.Minute)
	_, err = g.CurrentPosition(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIPGeolocatorFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer server.Close()

	g := NewIPGeolocator(server.URL, zap.NewNop())
	_, err := g.CurrentPosition(context.Background(), models.PositionOptions{Timeout: time.Second})
	assert.ErrorIs(t, err, ErrPositionUnavailable)
}

func TestStaticGeolocator(t *testing.T) {
	g := StaticGeolocator{Position: testCoords}
	pos, err := g.CurrentPosition(context.Background(), models.PositionOptions{})
	require.NoError(t, err)
	assert.Equal(t, testCoords, pos)
}
