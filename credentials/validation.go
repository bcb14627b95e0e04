package credentials

import (
	"fmt"
	"strings"
)

const (
	sandboxKeyPrefix    = "snd_"
	productionKeyPrefix = "prd_"
	merchantIDPrefix    = "merchant_"
	profileIDPrefix     = "pro_"

	minAPIKeyLength = 10
)

// Input holds raw, unvalidated login form values.
type Input struct {
	APIKey      string
	MerchantID  string
	ProfileID   string
	CustomerID  string
	Environment string
}

// FieldError is a single field-level validation failure. Validation failure
// is data, not an exception, so callers can render it directly in a form.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
}

// Validator checks the shape of login input against the documented format
// rules before any network call is attempted. It performs no I/O.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns either validated Credentials or a non-empty list of
// field-level errors. The two are mutually exclusive.
func (v *Validator) Validate(in Input) (Credentials, []FieldError) {
	var errs []FieldError

	env, ok := ParseEnvironment(strings.TrimSpace(in.Environment))
	if !ok {
		errs = append(errs, FieldError{
			Field:   "environment",
			Message: fmt.Sprintf("environment must be %q or %q", EnvironmentSandbox, EnvironmentProduction),
		})
		env = EnvironmentSandbox
	}

	if fe := v.validateAPIKey(strings.TrimSpace(in.APIKey), env); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := v.validateMerchantID(strings.TrimSpace(in.MerchantID)); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := v.validateProfileID(strings.TrimSpace(in.ProfileID)); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := v.validateCustomerID(strings.TrimSpace(in.CustomerID)); fe != nil {
		errs = append(errs, *fe)
	}

	if len(errs) > 0 {
		return Credentials{}, errs
	}

	return Credentials{
		APIKey:      strings.TrimSpace(in.APIKey),
		MerchantID:  strings.TrimSpace(in.MerchantID),
		ProfileID:   strings.TrimSpace(in.ProfileID),
		CustomerID:  strings.TrimSpace(in.CustomerID),
		Environment: env,
	}, nil
}

func (v *Validator) validateAPIKey(apiKey string, env Environment) *FieldError {
	if apiKey == "" {
		return &FieldError{Field: "apiKey", Message: "API key is required"}
	}
	if len(apiKey) < minAPIKeyLength {
		return &FieldError{
			Field:   "apiKey",
			Message: fmt.Sprintf("API key must be at least %d characters", minAPIKeyLength),
		}
	}
	if !strings.HasPrefix(apiKey, env.APIKeyPrefix()) {
		return &FieldError{
			Field:   "apiKey",
			Message: fmt.Sprintf("%s API key must start with %q", env, env.APIKeyPrefix()),
		}
	}
	return nil
}

func (v *Validator) validateMerchantID(merchantID string) *FieldError {
	if merchantID == "" {
		return &FieldError{Field: "merchantId", Message: "merchant id is required"}
	}
	if !strings.HasPrefix(merchantID, merchantIDPrefix) {
		return &FieldError{
			Field:   "merchantId",
			Message: fmt.Sprintf("merchant id must start with %q", merchantIDPrefix),
		}
	}
	return nil
}

func (v *Validator) validateProfileID(profileID string) *FieldError {
	if profileID == "" {
		return &FieldError{Field: "profileId", Message: "profile id is required"}
	}
	if !strings.HasPrefix(profileID, profileIDPrefix) {
		return &FieldError{
			Field:   "profileId",
			Message: fmt.Sprintf("profile id must start with %q", profileIDPrefix),
		}
	}
	return nil
}

func (v *Validator) validateCustomerID(customerID string) *FieldError {
	if customerID == "" {
		return &FieldError{Field: "customerId", Message: "customer id is required"}
	}
	return nil
}
