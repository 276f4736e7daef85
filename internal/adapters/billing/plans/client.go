package plans

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"dairy-herd-service/internal/platform/httpclient"
)

var (
	ErrPlansNotConfigured = errors.New("plans client not configured")
	ErrPlansUpstream      = errors.New("plans upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Vacío => "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// FeaturesResponse es deliberadamente simple: mapa feature -> habilitada.
type FeaturesResponse struct {
	FarmID   string          `json:"farm_id"`
	Features map[string]bool `json:"features"`
}

func (c *Client) GetFeatures(ctx context.Context, farmID string) (FeaturesResponse, error) {
	if !c.IsConfigured() {
		return FeaturesResponse{}, ErrPlansNotConfigured
	}

	var resp FeaturesResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/farms/"+strings.TrimSpace(farmID)+"/features", map[string]string{
		c.apiKeyHeader: c.apiKey,
	}, nil, &resp)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return FeaturesResponse{}, ErrPlansUpstream
		}
		return FeaturesResponse{}, err
	}
	return resp, nil
}
