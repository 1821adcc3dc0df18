package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourorg/openhouse-api/internal/logger"
)

var ErrMissingToken = errors.New("mapbox_token_missing")

type Client struct {
	token   string
	baseURL string
	country string
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithRateLimit caps outgoing geocode requests. rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithRetryMax(n int) Option { return func(c *Client) { c.http.RetryMax = n } }

func NewClient(token string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil

	c := &Client{
		token:   token,
		baseURL: "https://api.mapbox.com",
		country: "US",
		http:    rc,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Forward runs a forward geocode for address and returns the decoded features.
// Docs: GET /geocoding/v5/mapbox.places/{query}.json
func (c *Client) Forward(ctx context.Context, address string) ([]Feature, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("access_token", c.token)
	q.Set("country", c.country)
	q.Set("limit", "1")
	u := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s", c.baseURL, url.PathEscape(address), q.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, fmt.Errorf("mapbox error %d: %v", resp.StatusCode, body["message"])
	}
	raw, err := ioReadAllLimit(resp.Body, 1<<20)
	if err != nil {
		return nil, err
	}
	return decodeFeatures(raw)
}

// Geocode resolves address to [lng, lat] using the first candidate. Transport
// failures and empty results both report false; neither is surfaced.
func (c *Client) Geocode(ctx context.Context, address string) ([2]float64, bool) {
	features, err := c.Forward(ctx, address)
	if err != nil {
		logger.Log.Warnf("geocode %q failed: %v", address, err)
		return [2]float64{}, false
	}
	if len(features) == 0 {
		return [2]float64{}, false
	}
	return features[0].LngLat()
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
