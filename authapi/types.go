// Package authapi defines the wire types shared by the session proxy and
// the dashboard auth client. Every response carries the same normalized
// shape so callers handle one result regardless of underlying cause.
package authapi

import (
	"time"

	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
)

// Error codes returned in the `code` field of failed responses.
const (
	CodeValidationFailed   = "validation_failed"
	CodeInvalidCredentials = "invalid_credentials"
	CodeSessionExpired     = "session_expired"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

// FieldDetail mirrors credentials.FieldError on the wire so server-side and
// client-side validation failures render identically in the login form.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	APIKey      string `json:"api_key"`
	MerchantID  string `json:"merchant_id"`
	ProfileID   string `json:"profile_id"`
	CustomerID  string `json:"customer_id"`
	Environment string `json:"environment,omitempty"`
}

// CustomerPayload carries the customer identity issued by the backend.
type CustomerPayload struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName *string `json:"customer_name"`
	Environment  string  `json:"environment"`
}

// SessionPayload carries the session identity and server-issued expiry.
// ExpiresAt is RFC 3339 and must be taken verbatim by clients.
type SessionPayload struct {
	ExpiresAt  string `json:"expires_at"`
	MerchantID string `json:"merchant_id,omitempty"`
	ProfileID  string `json:"profile_id,omitempty"`
}

// ExpiryTime parses the server-issued expiry.
func (p SessionPayload) ExpiryTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, p.ExpiresAt)
	if err != nil {
		return time.Time{}, interrors.Wrapf(interrors.ErrMalformedResponse, "bad expires_at %q", p.ExpiresAt)
	}
	return t, nil
}

// LoginResponse is the body of a POST /api/auth/login response.
type LoginResponse struct {
	Success  bool             `json:"success"`
	Code     string           `json:"code,omitempty"`
	Error    string           `json:"error,omitempty"`
	Details  []FieldDetail    `json:"details,omitempty"`
	Customer *CustomerPayload `json:"customer,omitempty"`
	Session  *SessionPayload  `json:"session,omitempty"`
}

// Validate enforces the response schema. A body that fails here is treated
// identically to a transport failure, never passed through to callers.
func (r LoginResponse) Validate() error {
	if !r.Success {
		if r.Code == "" {
			return interrors.Wrapf(interrors.ErrMalformedResponse, "failed login without code")
		}
		return nil
	}
	if r.Customer == nil || r.Session == nil {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "successful login missing customer or session")
	}
	if r.Customer.CustomerID == "" || r.Session.MerchantID == "" || r.Session.ProfileID == "" {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "successful login with empty identity fields")
	}
	if _, err := r.Session.ExpiryTime(); err != nil {
		return err
	}
	return nil
}

// SessionResponse is the body of a GET /api/auth/session response.
type SessionResponse struct {
	Success         bool             `json:"success"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	Code            string           `json:"code,omitempty"`
	Error           string           `json:"error,omitempty"`
	Customer        *CustomerPayload `json:"customer,omitempty"`
	Session         *SessionPayload  `json:"session,omitempty"`
}

// Validate enforces the response schema.
func (r SessionResponse) Validate() error {
	if !r.Success {
		return nil
	}
	if !r.IsAuthenticated {
		return nil
	}
	if r.Customer == nil || r.Session == nil {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "authenticated session missing customer or session")
	}
	if r.Customer.CustomerID == "" || r.Session.MerchantID == "" || r.Session.ProfileID == "" {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "authenticated session with empty identity fields")
	}
	if _, err := r.Session.ExpiryTime(); err != nil {
		return err
	}
	return nil
}

// RefreshResponse is the body of a POST /api/auth/refresh response. Only
// the expiry changes on refresh.
type RefreshResponse struct {
	Success bool            `json:"success"`
	Code    string          `json:"code,omitempty"`
	Error   string          `json:"error,omitempty"`
	Session *SessionPayload `json:"session,omitempty"`
}

// Validate enforces the response schema.
func (r RefreshResponse) Validate() error {
	if !r.Success {
		return nil
	}
	if r.Session == nil {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "successful refresh missing session")
	}
	if _, err := r.Session.ExpiryTime(); err != nil {
		return err
	}
	return nil
}

// LogoutResponse is the body of a POST /api/auth/logout response.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Validate enforces the response schema. Logout has no required payload.
func (r LogoutResponse) Validate() error {
	return nil
}
