// Package api is the HTTP client of the guide backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/discovery"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4096
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: status %d: %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// CityGuides is one row of the landing page table.
type CityGuides struct {
	City  string `json:"city"`
	Count int    `json:"nraudioguides"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type guidesResponse struct {
	Guides []discovery.Guide `json:"guides"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

type mediaResponse struct {
	Photos []string `json:"photos"`
	Audio  *string  `json:"audio"`
}

// Client talks to the guide backend. It implements discovery.Remote.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     *zap.Logger
}

var _ discovery.Remote = (*Client)(nil)

// NewClient creates a client for the backend at baseURL. A zero timeout uses
// the default.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    u,
		logger:     logger,
	}, nil
}

// BaseURL is the backend root, used to resolve relative media URLs.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SearchLocations calls GET /locations.
func (c *Client) SearchLocations(ctx context.Context, text string) ([]discovery.RemoteLocation, error) {
	q := url.Values{}
	q.Set("location", text)

	var out []discovery.RemoteLocation
	if err := c.do(ctx, http.MethodGet, "/locations", q, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []discovery.RemoteLocation{}
	}
	return out, nil
}

// Tags calls GET /tags.
func (c *Client) Tags(ctx context.Context, language string) ([]string, error) {
	q := url.Values{}
	q.Set("language", language)

	var out tagsResponse
	if err := c.do(ctx, http.MethodGet, "/tags", q, &out); err != nil {
		return nil, err
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out.Tags, nil
}

// Guides calls GET /guides.
func (c *Client) Guides(ctx context.Context, at discovery.Coordinate, language string) ([]discovery.Guide, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("language", language)

	var out guidesResponse
	if err := c.do(ctx, http.MethodGet, "/guides", q, &out); err != nil {
		return nil, err
	}
	if out.Guides == nil {
		out.Guides = []discovery.Guide{}
	}
	return out.Guides, nil
}

// Media calls GET /media/{id}. A null audio becomes an empty string.
func (c *Client) Media(ctx context.Context, id discovery.GuideID) (discovery.MediaBundle, error) {
	var out mediaResponse
	if err := c.do(ctx, http.MethodGet, "/media/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return discovery.MediaBundle{}, err
	}

	bundle := discovery.MediaBundle{Photos: out.Photos}
	if bundle.Photos == nil {
		bundle.Photos = []string{}
	}
	if out.Audio != nil {
		bundle.Audio = *out.Audio
	}
	return bundle, nil
}

// IncrementPlays calls POST /guides/{id}/play.
func (c *Client) IncrementPlays(ctx context.Context, id discovery.GuideID) error {
	return c.do(ctx, http.MethodPost, "/guides/"+url.PathEscape(id.String())+"/play", nil, nil)
}

// AvailableGuides calls GET /availableguides.
func (c *Client) AvailableGuides(ctx context.Context) ([]CityGuides, error) {
	var out []CityGuides
	if err := c.do(ctx, http.MethodGet, "/availableguides", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []CityGuides{}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawPath = ""
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil {
			statusErr.Code = env.Error.Code
			statusErr.Message = env.Error.Message
		}
		return statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
