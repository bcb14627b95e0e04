package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/merchantdeck/go-dashboard-auth/authapi"
	"github.com/merchantdeck/go-dashboard-auth/credentials"
	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
	"github.com/merchantdeck/go-dashboard-auth/server/sessionrepo"
	"github.com/merchantdeck/go-dashboard-auth/session"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// LoginHandler validates credentials, verifies them upstream, and mints a
// new session cookie plus server-side record.
func (s *Server) LoginHandler() http.HandlerFunc {
	validator := credentials.NewValidator()

	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, authapi.LoginResponse{
				Success: false,
				Code:    authapi.CodeValidationFailed,
				Error:   "invalid request body",
			})
			return
		}

		creds, fieldErrs := validator.Validate(credentials.Input{
			APIKey:      req.APIKey,
			MerchantID:  req.MerchantID,
			ProfileID:   req.ProfileID,
			CustomerID:  req.CustomerID,
			Environment: req.Environment,
		})
		if len(fieldErrs) > 0 {
			details := make([]authapi.FieldDetail, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				details = append(details, authapi.FieldDetail{Field: fe.Field, Message: fe.Message})
			}
			writeJSON(w, http.StatusBadRequest, authapi.LoginResponse{
				Success: false,
				Code:    authapi.CodeValidationFailed,
				Error:   "credential validation failed",
				Details: details,
			})
			return
		}

		account, err := s.upstream.VerifyCredentials(r.Context(), creds)
		if err != nil {
			s.writeLoginFailure(w, err)
			return
		}

		now := s.nowTime()
		record := sessionrepo.Record{
			MerchantID:   account.MerchantID,
			ProfileID:    account.ProfileID,
			CustomerID:   account.CustomerID,
			CustomerName: account.CustomerName,
			Environment:  account.Environment,
			ExpiresAt:    now.Add(s.config.GetSessionTTL()),
			CreatedAt:    now,
		}

		sessionID := uuid.New().String()
		if err := s.sessions.Upsert(sessionID, record); err != nil {
			log.Err(err).Msg("failed to store session record")
			writeJSON(w, http.StatusInternalServerError, authapi.LoginResponse{
				Success: false,
				Code:    authapi.CodeInternal,
				Error:   "failed to create session",
			})
			return
		}

		if !s.mintCookie(w, r, sessionID, record) {
			writeJSON(w, http.StatusInternalServerError, authapi.LoginResponse{
				Success: false,
				Code:    authapi.CodeInternal,
				Error:   "failed to create session",
			})
			return
		}

		writeJSON(w, http.StatusOK, authapi.LoginResponse{
			Success:  true,
			Customer: customerPayload(record),
			Session: &authapi.SessionPayload{
				ExpiresAt:  record.ExpiresAt.Format(time.RFC3339),
				MerchantID: record.MerchantID,
				ProfileID:  record.ProfileID,
			},
		})
	}
}

// SessionHandler reports whether a currently valid session exists. It is
// side-effect free from the caller's perspective and always succeeds.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, sessionID, err := s.codec.Decode(sessionCookieValue(r))
		if err != nil {
			writeJSON(w, http.StatusOK, authapi.SessionResponse{Success: true, IsAuthenticated: false})
			return
		}

		record, err := s.sessions.Get(sessionID)
		if err != nil || record.ExpiresAt.Before(s.nowTime()) {
			if err == nil {
				_ = s.sessions.Delete(sessionID)
			}
			s.ClearSessionCookie(w, r)
			writeJSON(w, http.StatusOK, authapi.SessionResponse{Success: true, IsAuthenticated: false})
			return
		}

		writeJSON(w, http.StatusOK, authapi.SessionResponse{
			Success:         true,
			IsAuthenticated: true,
			Customer:        customerPayload(record),
			Session: &authapi.SessionPayload{
				ExpiresAt:  record.ExpiresAt.Format(time.RFC3339),
				MerchantID: record.MerchantID,
				ProfileID:  record.ProfileID,
			},
		})
	}
}

// RefreshHandler extends the session expiry within its absolute lifetime.
// Extending an already-extended session is safe, so two near-simultaneous
// refreshes both succeed.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, sessionID, err := s.codec.Decode(sessionCookieValue(r))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, authapi.RefreshResponse{
				Success: false,
				Code:    authapi.CodeSessionExpired,
				Error:   "no active session",
			})
			return
		}

		now := s.nowTime()
		record, err := s.sessions.Get(sessionID)
		if err != nil || record.ExpiresAt.Before(now) {
			s.ClearSessionCookie(w, r)
			writeJSON(w, http.StatusUnauthorized, authapi.RefreshResponse{
				Success: false,
				Code:    authapi.CodeSessionExpired,
				Error:   "session expired",
			})
			return
		}

		maxExpiry := record.CreatedAt.Add(s.config.GetSessionMaxLifetime())
		if !now.Before(maxExpiry) {
			_ = s.sessions.Delete(sessionID)
			s.ClearSessionCookie(w, r)
			writeJSON(w, http.StatusUnauthorized, authapi.RefreshResponse{
				Success: false,
				Code:    authapi.CodeSessionExpired,
				Error:   "session lifetime exceeded",
			})
			return
		}

		record.ExpiresAt = now.Add(s.config.GetSessionTTL())
		if record.ExpiresAt.After(maxExpiry) {
			record.ExpiresAt = maxExpiry
		}

		if err := s.sessions.Upsert(sessionID, record); err != nil {
			log.Err(err).Msg("failed to extend session record")
			writeJSON(w, http.StatusInternalServerError, authapi.RefreshResponse{
				Success: false,
				Code:    authapi.CodeInternal,
				Error:   "failed to extend session",
			})
			return
		}

		if !s.mintCookie(w, r, sessionID, record) {
			writeJSON(w, http.StatusInternalServerError, authapi.RefreshResponse{
				Success: false,
				Code:    authapi.CodeInternal,
				Error:   "failed to extend session",
			})
			return
		}

		writeJSON(w, http.StatusOK, authapi.RefreshResponse{
			Success: true,
			Session: &authapi.SessionPayload{ExpiresAt: record.ExpiresAt.Format(time.RFC3339)},
		})
	}
}

// LogoutHandler invalidates the server-side session. It always reports
// success; there is nothing useful a client can do with a failed logout.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, sessionID, err := s.codec.Decode(sessionCookieValue(r)); err == nil {
			if err := s.sessions.Delete(sessionID); err != nil {
				log.Err(err).Msg("failed to delete session record on logout")
			}
		}

		s.ClearSessionCookie(w, r)
		writeJSON(w, http.StatusOK, authapi.LogoutResponse{Success: true})
	}
}

func (s *Server) writeLoginFailure(w http.ResponseWriter, err error) {
	switch {
	case interrors.Is(err, interrors.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, authapi.LoginResponse{
			Success: false,
			Code:    authapi.CodeInvalidCredentials,
			Error:   "credentials were rejected by the payments gateway",
		})
	case interrors.Is(err, interrors.ErrRateLimited):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, authapi.LoginResponse{
			Success: false,
			Code:    authapi.CodeRateLimited,
			Error:   "too many attempts, slow down",
		})
	default:
		log.Err(err).Msg("upstream credential verification failed")
		writeJSON(w, http.StatusBadGateway, authapi.LoginResponse{
			Success: false,
			Code:    authapi.CodeInternal,
			Error:   "could not reach the payments gateway",
		})
	}
}

func (s *Server) mintCookie(w http.ResponseWriter, r *http.Request, sessionID string, record sessionrepo.Record) bool {
	cookieValue, err := s.codec.Encode(session.Session{
		CustomerID:   record.CustomerID,
		CustomerName: record.CustomerName,
		MerchantID:   record.MerchantID,
		ProfileID:    record.ProfileID,
		Environment:  record.Environment,
		ExpiresAt:    record.ExpiresAt,
	}, sessionID)
	if err != nil {
		log.Err(err).Msg("failed to sign session cookie")
		return false
	}

	s.SetSessionCookie(w, r, cookieValue, record.ExpiresAt)
	return true
}

func customerPayload(record sessionrepo.Record) *authapi.CustomerPayload {
	return &authapi.CustomerPayload{
		CustomerID:   record.CustomerID,
		CustomerName: record.CustomerName,
		Environment:  string(record.Environment),
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
