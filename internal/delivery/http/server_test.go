package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/config"
	"github.com/audioguide-discovery/internal/delivery/http/handler"
	"github.com/audioguide-discovery/internal/domain"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) Health(ctx context.Context) error { return f(ctx) }

type noGuides struct{}

func (noGuides) Nearby(ctx context.Context, lat, lon float64, language string) ([]*domain.Guide, error) {
	return []*domain.Guide{}, nil
}

func (noGuides) Record(ctx context.Context, guideID int64, client string) error { return nil }

func newTestServer(t *testing.T, checks map[string]HealthChecker) *Server {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{
		MediaDir:     t.TempDir(),
		AllowOrigins: "http://localhost:3000",
	}}
	logger := zap.NewNop()
	return NewServer(cfg, logger,
		handler.NewGuideHandler(noGuides{}, noGuides{}, logger),
		handler.NewCatalogHandler(nil, nil, nil, nil, logger),
		checks,
	)
}

func TestServer_Health(t *testing.T) {
	ok := checkFunc(func(ctx context.Context) error { return nil })
	down := checkFunc(func(ctx context.Context) error { return errors.New("down") })

	s := newTestServer(t, map[string]HealthChecker{"postgres": ok, "redis": ok})
	resp, err := s.App().Test(httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["time"])

	s = newTestServer(t, map[string]HealthChecker{"postgres": ok, "redis": down})
	resp, err = s.App().Test(httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.App().Test(httptest.NewRequest(nethttp.MethodGet, "/guides?latitude=1&longitude=2&language=en", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, err = s.App().Test(httptest.NewRequest(nethttp.MethodPost, "/guides/3/play", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusAccepted, resp.StatusCode)
}

func TestServer_NotFoundUsesErrorEnvelope(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.App().Test(httptest.NewRequest(nethttp.MethodGet, "/tours", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "HTTP_ERROR", body.Error.Code)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, nil)

	_, err := s.App().Test(httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	require.NoError(t, err)

	resp, err := s.App().Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "audioguide_http_requests_total"))
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(nethttp.MethodOptions, "/guides", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
