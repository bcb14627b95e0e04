package config

import "time"

type AuthConfig interface {
	GetCookieSecret() string
	GetSessionTTL() time.Duration
	GetSessionMaxLifetime() time.Duration
	GetRefreshMargin() time.Duration
	GetRequestTimeout() time.Duration
	GetMaxAttempts() int
	GetRetryBackoff() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetCookieSecret() string {
	return GetEnv("COOKIE_SECRET", stringOverride(fileOverrides.CookieSecret, "dev-only-cookie-secret"))
}

// GetSessionTTL is the sliding window a session is extended by on login and
// on each successful refresh.
func (Auth) GetSessionTTL() time.Duration {
	return durationOverride(fileOverrides.SessionTTL, 1*time.Hour)
}

// GetSessionMaxLifetime caps how long a session can be refreshed past its
// original login before the operator must authenticate again.
func (Auth) GetSessionMaxLifetime() time.Duration {
	return durationOverride(fileOverrides.SessionMaxLifetime, 24*time.Hour)
}

// GetRefreshMargin is the fixed lead time before expiry at which a
// proactive refresh is attempted.
func (Auth) GetRefreshMargin() time.Duration {
	return durationOverride(fileOverrides.RefreshMargin, 5*time.Minute)
}

func (Auth) GetRequestTimeout() time.Duration {
	return durationOverride(fileOverrides.RequestTimeout, 15*time.Second)
}

func (Auth) GetMaxAttempts() int {
	return intOverride(fileOverrides.MaxAttempts, 2)
}

func (Auth) GetRetryBackoff() time.Duration {
	return durationOverride(fileOverrides.RetryBackoff, 500*time.Millisecond)
}
