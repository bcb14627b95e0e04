package credentials

// Environment identifies which deployment of the upstream payments API a
// session is scoped to. It never changes within a single session's lifetime.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment maps raw form input to an Environment. An empty value
// defaults to sandbox; anything else is rejected.
func ParseEnvironment(raw string) (Environment, bool) {
	switch Environment(raw) {
	case EnvironmentSandbox, EnvironmentProduction:
		return Environment(raw), true
	case "":
		return EnvironmentSandbox, true
	}
	return "", false
}

// APIKeyPrefix returns the key prefix required for this environment.
func (e Environment) APIKeyPrefix() string {
	if e == EnvironmentProduction {
		return productionKeyPrefix
	}
	return sandboxKeyPrefix
}

// Credentials is the validated input to a login attempt. It is constructed
// from raw form input by the Validator, consumed once, and never persisted.
type Credentials struct {
	APIKey      string
	MerchantID  string
	ProfileID   string
	CustomerID  string
	Environment Environment
}
