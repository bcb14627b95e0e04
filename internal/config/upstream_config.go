package config

type UpstreamConfig interface {
	GetSandboxBaseURL() string
	GetProductionBaseURL() string
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

func (Upstream) GetSandboxBaseURL() string {
	return GetEnv("UPSTREAM_SANDBOX_URL", stringOverride(fileOverrides.UpstreamSandboxURL, "https://sandbox.payments.example.com"))
}

func (Upstream) GetProductionBaseURL() string {
	return GetEnv("UPSTREAM_PRODUCTION_URL", stringOverride(fileOverrides.UpstreamProductionURL, "https://api.payments.example.com"))
}
