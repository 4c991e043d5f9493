package ipapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/audioguide-discovery/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGeolocator_Locate(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		var gotPath, gotFields string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotFields = r.URL.Query().Get("fields")
			w.Write([]byte(`{"status":"success","lat":38.7223,"lon":-9.1393,"city":"Lisbon"}`))
		}))
		defer server.Close()

		g := NewGeolocator(server.URL+"/", time.Second, logger)
		coord, err := g.Locate(context.Background())

		require.NoError(t, err)
		assert.Equal(t, discovery.Coordinate{Latitude: 38.7223, Longitude: -9.1393}, coord)
		assert.Equal(t, "/json/", gotPath)
		assert.Equal(t, fields, gotFields)
	})

	t.Run("lookup failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"fail","message":"private range"}`))
		}))
		defer server.Close()

		_, err := NewGeolocator(server.URL, time.Second, logger).Locate(context.Background())

		assert.ErrorIs(t, err, discovery.ErrPositionUnavailable)
		assert.Contains(t, err.Error(), "private range")
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := NewGeolocator(server.URL, time.Second, logger).Locate(context.Background())

		assert.ErrorIs(t, err, discovery.ErrPositionUnavailable)
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := NewGeolocator(server.URL, time.Second, logger).Locate(context.Background())

		assert.ErrorIs(t, err, discovery.ErrPositionUnavailable)
	})

	t.Run("out of range", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"success","lat":120,"lon":0}`))
		}))
		defer server.Close()

		_, err := NewGeolocator(server.URL, time.Second, logger).Locate(context.Background())

		assert.ErrorIs(t, err, discovery.ErrPositionUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := NewGeolocator(url, time.Second, logger).Locate(context.Background())

		assert.ErrorIs(t, err, discovery.ErrPositionUnavailable)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewGeolocator("http://127.0.0.1:1", time.Second, logger).Locate(ctx)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGeolocator_WithProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer server.Close()

	provider := discovery.NewGeolocationProvider(NewGeolocator(server.URL, time.Second, zap.NewNop()), zap.NewNop())
	pos := provider.Acquire(context.Background())

	assert.Equal(t, discovery.GeoUnavailable, pos.Status)
	assert.Nil(t, pos.Coordinate)
}
