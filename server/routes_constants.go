package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session API Routes (consumed by the dashboard client)
	RouteAPILogin   = "/api/auth/login"
	RouteAPISession = "/api/auth/session"
	RouteAPIRefresh = "/api/auth/refresh"
	RouteAPILogout  = "/api/auth/logout"

	// Health
	RouteHealth = "/health"
)
