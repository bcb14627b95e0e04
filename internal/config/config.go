package config

type Config interface {
	EnvConfig
	CorsConfig
	AuthConfig
	UpstreamConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Auth
	Upstream
}

func New() Config {
	return mainConfig{}
}

// NewFromFile loads YAML overrides before returning the config. Environment
// variables still win over file values.
func NewFromFile(path string) (Config, error) {
	if err := LoadFile(path); err != nil {
		return nil, err
	}
	return mainConfig{}, nil
}
