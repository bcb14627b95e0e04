package authclient

import (
	"net/http"

	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
)

// maxAuthRetries bounds how many times a request is replayed after a
// refresh. One replay is enough: if the refreshed session still yields
// 401 the session is gone, not stale.
const maxAuthRetries = 1

// Do performs an authenticated request against the dashboard backend. On
// a 401 it refreshes the session once and replays the request; a second
// 401 is returned as ErrUnauthorized. Requests with a body must set
// GetBody (http.NewRequest does this for common body types) or the
// replay is skipped.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for retry := 0; ; retry++ {
		attemptReq := req
		if retry > 0 {
			attemptReq = req.Clone(req.Context())
			if req.Body != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, interrors.Wrapf(err, "[Client.Do] replaying request body")
				}
				attemptReq.Body = body
			}
		}

		resp, err := c.httpClient.Do(attemptReq)
		if err != nil {
			return nil, interrors.Wrapf(interrors.ErrConnection, "[Client.Do] %s %s: %v", req.Method, req.URL.Path, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}

		if retry >= maxAuthRetries {
			resp.Body.Close()
			c.Logout(req.Context(), ReasonSessionExpired)
			return nil, interrors.Wrapf(interrors.ErrUnauthorized, "[Client.Do] %s %s", req.Method, req.URL.Path)
		}

		// A body without GetBody cannot be replayed; hand the 401 back
		// rather than logging out a session that may be perfectly valid.
		if req.Body != nil && req.GetBody == nil {
			return resp, nil
		}
		resp.Body.Close()

		if err := c.Refresh(req.Context()); err != nil {
			// Refresh already forced the logout.
			return nil, interrors.Wrapf(interrors.ErrUnauthorized, "[Client.Do] session refresh failed")
		}
	}
}
