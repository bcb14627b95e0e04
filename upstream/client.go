// Package upstream is a thin client for the payments gateway the dashboard
// fronts. The session proxy only needs it to verify merchant credentials at
// login time; everything else the gateway offers is out of scope here.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/credentials"
	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
	"github.com/rs/zerolog"
)

const apiKeyHeader = "api-key"

// MerchantAccount is the identity the gateway confirms for a credential set.
type MerchantAccount struct {
	MerchantID   string
	ProfileID    string
	CustomerID   string
	CustomerName *string
	Environment  credentials.Environment
}

// Config is the subset of configuration the client needs. Each environment
// maps to a distinct upstream base URL.
type Config interface {
	GetSandboxBaseURL() string
	GetProductionBaseURL() string
}

// Client verifies credentials against the payments gateway.
type Client struct {
	httpClient    *http.Client
	sandboxURL    string
	productionURL string
	logger        zerolog.Logger
}

// ClientOption modifies a Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates an upstream client from config.
func New(cfg Config, options ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[upstream.New] config is required")
	}
	if cfg.GetSandboxBaseURL() == "" || cfg.GetProductionBaseURL() == "" {
		return nil, fmt.Errorf("[upstream.New] upstream base URLs are required")
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		sandboxURL:    cfg.GetSandboxBaseURL(),
		productionURL: cfg.GetProductionBaseURL(),
		logger:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *Client) baseURL(env credentials.Environment) string {
	if env == credentials.EnvironmentProduction {
		return c.productionURL
	}
	return c.sandboxURL
}

type profileResponse struct {
	MerchantID   string  `json:"merchant_id"`
	ProfileID    string  `json:"profile_id"`
	CustomerName *string `json:"customer_name"`
}

// VerifyCredentials checks the API key against the gateway account and
// profile. Invalid keys and unknown accounts both come back as
// ErrInvalidCredentials so the proxy never leaks which part was wrong.
func (c *Client) VerifyCredentials(ctx context.Context, creds credentials.Credentials) (*MerchantAccount, error) {
	url := fmt.Sprintf("%s/accounts/%s/profiles/%s", c.baseURL(creds.Environment), creds.MerchantID, creds.ProfileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, interrors.Wrapf(err, "[upstream.VerifyCredentials] building request")
	}
	req.Header.Set(apiKeyHeader, creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, interrors.Wrapf(interrors.ErrConnection, "[upstream.VerifyCredentials] %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return nil, interrors.ErrInvalidCredentials
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, interrors.ErrRateLimited
	default:
		return nil, interrors.Wrapf(interrors.ErrInternal, "[upstream.VerifyCredentials] gateway status %d", resp.StatusCode)
	}

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, interrors.Wrapf(interrors.ErrMalformedResponse, "[upstream.VerifyCredentials] %v", err)
	}
	if profile.MerchantID != creds.MerchantID || profile.ProfileID != creds.ProfileID {
		return nil, interrors.Wrapf(interrors.ErrMalformedResponse, "[upstream.VerifyCredentials] gateway returned mismatched identity")
	}

	return &MerchantAccount{
		MerchantID:   profile.MerchantID,
		ProfileID:    profile.ProfileID,
		CustomerID:   creds.CustomerID,
		CustomerName: profile.CustomerName,
		Environment:  creds.Environment,
	}, nil
}
