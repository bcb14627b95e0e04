package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/merchantdeck/go-dashboard-auth/authapi"
	"github.com/merchantdeck/go-dashboard-auth/credentials"
	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
	"github.com/merchantdeck/go-dashboard-auth/routeguard"
	"github.com/merchantdeck/go-dashboard-auth/session"
	"github.com/pkg/errors"
)

// Result is the single normalized outcome shape for auth operations.
// Validation failures and server failures carry the same field-level
// details so the login form renders both identically.
type Result struct {
	Success bool
	Code    string
	Err     string
	Details []credentials.FieldError
}

// Login validates raw form input, posts it to the session proxy, and on
// success populates the auth state with the server-issued session. The
// server's expires_at is stored verbatim. Invalid input never reaches the
// network.
func (c *Client) Login(ctx context.Context, in credentials.Input) Result {
	creds, fieldErrs := c.validator.Validate(in)
	if len(fieldErrs) > 0 {
		return Result{
			Success: false,
			Code:    authapi.CodeValidationFailed,
			Err:     "credential validation failed",
			Details: fieldErrs,
		}
	}

	body, err := json.Marshal(authapi.LoginRequest{
		APIKey:      creds.APIKey,
		MerchantID:  creds.MerchantID,
		ProfileID:   creds.ProfileID,
		CustomerID:  creds.CustomerID,
		Environment: string(creds.Environment),
	})
	if err != nil {
		return Result{Success: false, Code: authapi.CodeInternal, Err: "failed to encode login request"}
	}

	var resp authapi.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		result := resultFromError(err)
		c.notifier.Error(result.Err)
		return result
	}

	if !resp.Success {
		details := make([]credentials.FieldError, 0, len(resp.Details))
		for _, d := range resp.Details {
			details = append(details, credentials.FieldError{Field: d.Field, Message: d.Message})
		}
		result := Result{
			Success: false,
			Code:    resp.Code,
			Err:     failureMessage(resp.Code, resp.Error),
			Details: details,
		}
		c.notifier.Error(result.Err)
		return result
	}

	expiresAt, err := resp.Session.ExpiryTime()
	if err != nil {
		result := resultFromError(err)
		c.notifier.Error(result.Err)
		return result
	}

	env, _ := credentials.ParseEnvironment(resp.Customer.Environment)
	c.holder.Set(session.Session{
		CustomerID:   resp.Customer.CustomerID,
		CustomerName: resp.Customer.CustomerName,
		MerchantID:   resp.Session.MerchantID,
		ProfileID:    resp.Session.ProfileID,
		Environment:  env,
		ExpiresAt:    expiresAt,
	})

	c.notifier.Success("signed in")
	return Result{Success: true}
}

// CheckSession asks the proxy whether a valid session exists, restoring
// the auth state from the cookie when it does. A silent check surfaces no
// notifications. Only an authoritative "not authenticated" clears held
// state; a transport failure leaves it untouched and reports false.
func (c *Client) CheckSession(ctx context.Context, silent bool) bool {
	var resp authapi.SessionResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/session", nil, &resp); err != nil {
		c.logger.Warn().Err(err).Msg("session check failed")
		if !silent {
			c.notifier.Error(resultFromError(err).Err)
		}
		return false
	}

	if !resp.Success || !resp.IsAuthenticated {
		c.holder.Clear()
		return false
	}

	expiresAt, err := resp.Session.ExpiryTime()
	if err != nil {
		c.logger.Warn().Err(err).Msg("session check returned bad expiry")
		if !silent {
			c.notifier.Error("invalid server response")
		}
		return false
	}

	env, _ := credentials.ParseEnvironment(resp.Customer.Environment)
	c.holder.Set(session.Session{
		CustomerID:   resp.Customer.CustomerID,
		CustomerName: resp.Customer.CustomerName,
		MerchantID:   resp.Session.MerchantID,
		ProfileID:    resp.Session.ProfileID,
		Environment:  env,
		ExpiresAt:    expiresAt,
	})
	return true
}

// Refresh extends the current session's expiry. Any failure, whatever the
// cause, forces a logout with reason session_expired rather than leaving
// stale state behind.
func (c *Client) Refresh(ctx context.Context) error {
	var resp authapi.RefreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", nil, &resp); err != nil {
		c.logger.Warn().Err(err).Msg("session refresh failed")
		c.Logout(ctx, ReasonSessionExpired)
		return errors.Wrap(err, "[Client.Refresh] refresh request")
	}

	if !resp.Success {
		c.logger.Warn().Str("code", resp.Code).Msg("session refresh rejected")
		c.Logout(ctx, ReasonSessionExpired)
		return errors.Errorf("[Client.Refresh] refresh rejected: %s", resp.Code)
	}

	expiresAt, err := resp.Session.ExpiryTime()
	if err != nil {
		c.Logout(ctx, ReasonSessionExpired)
		return errors.Wrap(err, "[Client.Refresh] bad expiry")
	}

	c.holder.UpdateExpiry(expiresAt)
	return nil
}

// Logout invalidates the server-side session best-effort, unconditionally
// clears local state, and navigates to the login page. It always succeeds
// from the caller's perspective.
func (c *Client) Logout(ctx context.Context, reason string) {
	var resp authapi.LogoutResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, &resp); err != nil {
		c.logger.Warn().Err(err).Msg("server-side logout failed")
	}

	c.holder.Clear()

	target := routeguard.LoginRoute
	if reason != "" {
		target += "?reason=" + url.QueryEscape(reason)
	}
	c.navigator.Navigate(target)

	if reason == ReasonSessionExpired {
		c.notifier.Error("your session has expired, please sign in again")
	} else {
		c.notifier.Success("signed out")
	}
}

func resultFromError(err error) Result {
	switch {
	case interrors.Is(err, interrors.ErrTimeout):
		return Result{Success: false, Code: "timeout", Err: "the request timed out, please try again"}
	case interrors.Is(err, interrors.ErrRateLimited):
		return Result{Success: false, Code: authapi.CodeRateLimited, Err: "too many attempts, slow down"}
	case interrors.Is(err, interrors.ErrMalformedResponse):
		return Result{Success: false, Code: "invalid_response", Err: "invalid server response"}
	default:
		return Result{Success: false, Code: "network_error", Err: "could not reach the server"}
	}
}

func failureMessage(code, serverMessage string) string {
	if serverMessage != "" {
		return serverMessage
	}
	switch code {
	case authapi.CodeInvalidCredentials:
		return "credentials were rejected"
	case authapi.CodeRateLimited:
		return "too many attempts, slow down"
	default:
		return "login failed"
	}
}
