package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/merchantdeck/go-dashboard-auth/credentials"
	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
)

// CookieName is the single session cookie holding the serialized Session.
const CookieName = "merchant_session"

// claims is the JWT payload written into the session cookie. The sid links
// the cookie to the server-side session record.
type claims struct {
	SessionID    string  `json:"sid"`
	CustomerID   string  `json:"customer_id"`
	CustomerName *string `json:"customer_name,omitempty"`
	MerchantID   string  `json:"merchant_id"`
	ProfileID    string  `json:"profile_id"`
	Environment  string  `json:"environment"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the session cookie value. Absence of a cookie,
// a bad signature, or an expired token are all "no session", never a crash.
type Codec struct {
	secret  []byte
	nowTime func() time.Time
}

// CodecOption modifies a Codec instance.
type CodecOption func(*Codec)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

// NewCodec creates a cookie codec signing with the given secret.
func NewCodec(secret string, options ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, interrors.Wrapf(interrors.ErrInternal, "[NewCodec] cookie secret is required")
	}
	c := &Codec{
		secret:  []byte(secret),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Encode serializes a Session into a signed cookie value.
func (c *Codec) Encode(s Session, sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID:    sessionID,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		MerchantID:   s.MerchantID,
		ProfileID:    s.ProfileID,
		Environment:  string(s.Environment),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(c.nowTime()),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", interrors.Wrapf(err, "[Codec.Encode] signing session cookie")
	}
	return signed, nil
}

// Decode verifies a cookie value and reconstructs the Session plus the
// server-side session record id. Any failure maps to ErrNoSession.
func (c *Codec) Decode(cookieValue string) (Session, string, error) {
	if cookieValue == "" {
		return Session{}, "", interrors.ErrNoSession
	}

	var cl claims
	token, err := jwt.ParseWithClaims(cookieValue, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, interrors.Wrapf(interrors.ErrNoSession, "unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.nowTime))
	if err != nil || !token.Valid {
		return Session{}, "", interrors.Wrapf(interrors.ErrNoSession, "invalid session cookie")
	}

	env, ok := credentials.ParseEnvironment(cl.Environment)
	if !ok || cl.Environment == "" {
		return Session{}, "", interrors.Wrapf(interrors.ErrNoSession, "session cookie without environment")
	}

	return Session{
		CustomerID:   cl.CustomerID,
		CustomerName: cl.CustomerName,
		MerchantID:   cl.MerchantID,
		ProfileID:    cl.ProfileID,
		Environment:  env,
		ExpiresAt:    cl.ExpiresAt.Time,
	}, cl.SessionID, nil
}
