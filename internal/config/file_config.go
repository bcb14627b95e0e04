package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// duration wraps time.Duration so YAML values like "5m" parse.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = duration(parsed)
	return nil
}

// FileOverrides are optional settings loaded from a YAML file. Unset fields
// fall back to the built-in defaults; environment variables beat both.
type FileOverrides struct {
	Port               *string   `yaml:"port"`
	AppName            *string   `yaml:"app_name"`
	BaseURL            *string   `yaml:"base_url"`
	CookieSecret       *string   `yaml:"cookie_secret"`
	SessionTTL         *duration `yaml:"session_ttl"`
	SessionMaxLifetime *duration `yaml:"session_max_lifetime"`
	RefreshMargin      *duration `yaml:"refresh_margin"`
	RequestTimeout     *duration `yaml:"request_timeout"`
	MaxAttempts        *int      `yaml:"max_attempts"`
	RetryBackoff       *duration `yaml:"retry_backoff"`

	UpstreamSandboxURL    *string `yaml:"upstream_sandbox_url"`
	UpstreamProductionURL *string `yaml:"upstream_production_url"`

	AllowedOrigins *string `yaml:"allowed_origins"`
}

var fileOverrides FileOverrides

// LoadFile reads YAML overrides into the package. Call before New.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("[config.LoadFile] reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fileOverrides); err != nil {
		return fmt.Errorf("[config.LoadFile] parsing %s: %w", path, err)
	}
	return nil
}

func stringOverride(v *string, def string) string {
	if v != nil {
		return *v
	}
	return def
}

func durationOverride(v *duration, def time.Duration) time.Duration {
	if v != nil {
		return time.Duration(*v)
	}
	return def
}

func intOverride(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
