package supabase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"dairy-herd-service/internal/platform/httpclient"
	"dairy-herd-service/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("supabase client not configured")
	ErrUnauthorized  = errors.New("supabase unauthorized")
	ErrUpstream      = errors.New("supabase upstream error")
)

// Config del cliente de auth.
// BaseURL y APIKey normalmente vienen de env vars en el main que lo instancia.
type Config struct {
	BaseURL string
	APIKey  string

	Timeout time.Duration
}

type Client struct {
	apiKey string
	http   *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// userResponse es el shape de /auth/v1/user. farm_id y farm_role viajan en
// app_metadata (los setea el backend de la app al crear/unir la granja).
type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AppMetadata struct {
		FarmID   string `json:"farm_id"`
		FarmRole string `json:"farm_role"`
	} `json:"app_metadata"`
}

// VerifyToken valida el access token contra el endpoint de user.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}

	var resp userResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/auth/v1/user", map[string]string{
		"apikey":        c.apiKey,
		"Authorization": "Bearer " + token,
	}, nil, &resp)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, ErrUpstream
		}
		return auth.Claims{}, err
	}

	role := auth.Role(strings.TrimSpace(resp.AppMetadata.FarmRole))
	if role == "" {
		role = auth.RoleMember
	}

	return auth.Claims{
		UserID: strings.TrimSpace(resp.ID),
		Email:  strings.TrimSpace(resp.Email),
		FarmID: strings.TrimSpace(resp.AppMetadata.FarmID),
		Role:   role,
	}, nil
}
