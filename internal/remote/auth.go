package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an authenticated remote-store session.
type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session token has passed its expiry claim.
// Sessions without an expiry never expire locally.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SendCode asks the remote store to email a magic sign-in code.
func (c *Client) SendCode(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.post(ctx, "/v1/auth/send-code", body, nil)
}

// VerifyCode exchanges a magic code for a session. The returned token is
// signed and verified server-side; the client only decodes its claims to
// learn the principal and expiry.
func (c *Client) VerifyCode(ctx context.Context, email, code string) (Session, error) {
	body := struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}{Email: email, Code: code}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/v1/auth/verify", body, &resp); err != nil {
		return Session{}, err
	}
	sess, err := sessionFromToken(resp.Token)
	if err != nil {
		return Session{}, err
	}
	c.UseSession(sess)
	return sess, nil
}

func sessionFromToken(token string) (Session, error) {
	if token == "" {
		return Session{}, fmt.Errorf("%w: empty session token", ErrAuth)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("%w: parse session token: %v", ErrAuth, err)
	}
	sess := Session{Token: token}
	if sub, err := claims.GetSubject(); err == nil {
		sess.Principal.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		sess.Principal.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	if sess.Principal.Email == "" {
		return Session{}, fmt.Errorf("%w: session token has no email claim", ErrAuth)
	}
	return sess, nil
}
