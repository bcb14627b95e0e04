package credentials_test

import (
	"testing"

	"github.com/merchantdeck/go-dashboard-auth/credentials"
	"github.com/stretchr/testify/require"
)

func validInput() credentials.Input {
	return credentials.Input{
		APIKey:      "snd_abcdefghij",
		MerchantID:  "merchant_123",
		ProfileID:   "pro_123",
		CustomerID:  "cus_1",
		Environment: "sandbox",
	}
}

func TestValidator_Validate(t *testing.T) {
	v := credentials.NewValidator()

	t.Run("valid sandbox credentials", func(t *testing.T) {
		creds, errs := v.Validate(validInput())
		require.Empty(t, errs)
		require.Equal(t, "snd_abcdefghij", creds.APIKey)
		require.Equal(t, "merchant_123", creds.MerchantID)
		require.Equal(t, "pro_123", creds.ProfileID)
		require.Equal(t, "cus_1", creds.CustomerID)
		require.Equal(t, credentials.EnvironmentSandbox, creds.Environment)
	})

	t.Run("valid production credentials", func(t *testing.T) {
		in := validInput()
		in.APIKey = "prd_abcdefghij"
		in.Environment = "production"
		creds, errs := v.Validate(in)
		require.Empty(t, errs)
		require.Equal(t, credentials.EnvironmentProduction, creds.Environment)
	})

	t.Run("environment defaults to sandbox when omitted", func(t *testing.T) {
		in := validInput()
		in.Environment = ""
		creds, errs := v.Validate(in)
		require.Empty(t, errs)
		require.Equal(t, credentials.EnvironmentSandbox, creds.Environment)
	})

	t.Run("unknown environment", func(t *testing.T) {
		in := validInput()
		in.Environment = "staging"
		_, errs := v.Validate(in)
		require.NotEmpty(t, errs)
		requireFieldError(t, errs, "environment")
	})

	t.Run("bad key prefix", func(t *testing.T) {
		in := validInput()
		in.APIKey = "bad_key_abcdefghij"
		_, errs := v.Validate(in)
		require.NotEmpty(t, errs)
		requireFieldError(t, errs, "apiKey")
	})

	t.Run("production key rejected against sandbox", func(t *testing.T) {
		in := validInput()
		in.APIKey = "prd_abcdefghij"
		_, errs := v.Validate(in)
		requireFieldError(t, errs, "apiKey")
	})

	t.Run("key below minimum length", func(t *testing.T) {
		in := validInput()
		in.APIKey = "snd_ab"
		_, errs := v.Validate(in)
		requireFieldError(t, errs, "apiKey")
	})

	t.Run("empty key", func(t *testing.T) {
		in := validInput()
		in.APIKey = ""
		_, errs := v.Validate(in)
		requireFieldError(t, errs, "apiKey")
	})

	t.Run("merchant id without prefix", func(t *testing.T) {
		in := validInput()
		in.MerchantID = "123"
		_, errs := v.Validate(in)
		requireFieldError(t, errs, "merchantId")
	})

	t.Run("profile id without prefix", func(t *testing.T) {
		in := validInput()
		in.ProfileID = "profile123"
		_, errs := v.Validate(in)
		requireFieldError(t, errs, "profileId")
	})

	t.Run("empty customer id", func(t *testing.T) {
		in := validInput()
		in.CustomerID = "  "
		_, errs := v.Validate(in)
		requireFieldError(t, errs, "customerId")
	})

	t.Run("all fields empty collects every error", func(t *testing.T) {
		_, errs := v.Validate(credentials.Input{})
		require.Len(t, errs, 4)
	})

	t.Run("input is trimmed", func(t *testing.T) {
		in := validInput()
		in.MerchantID = "  merchant_123  "
		creds, errs := v.Validate(in)
		require.Empty(t, errs)
		require.Equal(t, "merchant_123", creds.MerchantID)
	})
}

func requireFieldError(t *testing.T, errs []credentials.FieldError, field string) {
	t.Helper()
	for _, fe := range errs {
		if fe.Field == field {
			require.NotEmpty(t, fe.Message)
			return
		}
	}
	t.Fatalf("expected a field error for %q, got %v", field, errs)
}

func TestParseEnvironment(t *testing.T) {
	t.Run("sandbox", func(t *testing.T) {
		env, ok := credentials.ParseEnvironment("sandbox")
		require.True(t, ok)
		require.Equal(t, credentials.EnvironmentSandbox, env)
	})

	t.Run("production", func(t *testing.T) {
		env, ok := credentials.ParseEnvironment("production")
		require.True(t, ok)
		require.Equal(t, credentials.EnvironmentProduction, env)
	})

	t.Run("empty defaults to sandbox", func(t *testing.T) {
		env, ok := credentials.ParseEnvironment("")
		require.True(t, ok)
		require.Equal(t, credentials.EnvironmentSandbox, env)
	})

	t.Run("unknown", func(t *testing.T) {
		_, ok := credentials.ParseEnvironment("qa")
		require.False(t, ok)
	})
}
