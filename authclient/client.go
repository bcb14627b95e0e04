// Package authclient is the dashboard's single auth module. It wraps the
// session proxy's login, session-check, refresh, and logout endpoints,
// owns the in-memory auth state, and normalizes every failure into one
// result shape callers can render directly.
//
// The session cookie lives in the http.Client's jar; the client itself
// never sees or stores the merchant API key after login.
package authclient

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/authstate"
	"github.com/merchantdeck/go-dashboard-auth/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Logout reasons appended to the login redirect as a query parameter.
const (
	ReasonSessionExpired = "session_expired"
	ReasonUserRequested  = "user_logout"
)

// Notifier surfaces user-visible notifications. Silent session checks
// bypass it entirely.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// Navigator performs client-side navigation after auth transitions.
type Navigator interface {
	Navigate(path string)
}

// NopNavigator ignores navigation requests.
type NopNavigator struct{}

func (NopNavigator) Navigate(string) {}

// Config is the subset of configuration the client needs.
type Config interface {
	GetRequestTimeout() time.Duration
	GetMaxAttempts() int
	GetRetryBackoff() time.Duration
}

// Client performs the session network operations and is the only writer of
// the auth state Holder.
type Client struct {
	baseURL    string
	httpClient *http.Client
	holder     *authstate.Holder
	validator  *credentials.Validator
	notifier   Notifier
	navigator  Navigator
	logger     zerolog.Logger

	requestTimeout time.Duration
	maxAttempts    int
	retryBackoff   time.Duration
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The replacement must
// carry a cookie jar or no session will survive a login.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) ClientOption {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithNavigator sets the navigation sink.
func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New initializes the auth client with required dependencies.
func New(baseURL string, cfg Config, holder *authstate.Holder, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[authclient.New] baseURL is required")
	}
	if cfg == nil {
		return nil, errors.New("[authclient.New] config is required")
	}
	if holder == nil {
		return nil, errors.New("[authclient.New] auth state holder is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "[authclient.New] cookiejar.New")
	}

	c := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Jar: jar},
		holder:         holder,
		validator:      credentials.NewValidator(),
		notifier:       NopNotifier{},
		navigator:      NopNavigator{},
		logger:         zerolog.Nop(),
		requestTimeout: cfg.GetRequestTimeout(),
		maxAttempts:    cfg.GetMaxAttempts(),
		retryBackoff:   cfg.GetRetryBackoff(),
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// Holder exposes the auth state for subscribers (scheduler, route guard).
func (c *Client) Holder() *authstate.Holder {
	return c.holder
}
