// Package server is the thin session proxy the dashboard client talks to.
// It validates credentials, verifies them against the upstream payments
// gateway, and manages the signed session cookie plus its server-side
// record. It never exposes the merchant API key back to the browser.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/internal/config"
	"github.com/merchantdeck/go-dashboard-auth/server/sessionrepo"
	"github.com/merchantdeck/go-dashboard-auth/session"
	"github.com/merchantdeck/go-dashboard-auth/upstream"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	codec    *session.Codec
	sessions sessionrepo.Repo
	upstream *upstream.Client
	nowTime  func() time.Time
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, upstreamClient *upstream.Client, sessionRepo sessionrepo.Repo, options ...ServerOption) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[server.New] config is required")
	}
	if upstreamClient == nil {
		return nil, fmt.Errorf("[server.New] upstream client is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[server.New] session repo is required")
	}

	codec, err := session.NewCodec(cfg.GetCookieSecret())
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to create cookie codec: %w", err)
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		codec:    codec,
		sessions: sessionRepo,
		upstream: upstreamClient,
		nowTime:  time.Now,
	}
	s.env = cfg.GetEnv()

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + resetColor
	} else {
		displayMethod = gray + paddedMethod + resetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
