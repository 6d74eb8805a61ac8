package intake

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/render"
)

const (
	purposeSession = "session"
	purposeFlash   = "flash"
)

// token returns the signed-in access token, or "" when the cookie is absent,
// tampered with or expired.
func (c *Component) token(r *http.Request) string {
	cookie, err := r.Cookie(c.opts.SessionCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	token, err := c.opts.Sealer.Open(purposeSession, cookie.Value)
	if err != nil {
		c.opts.Logger.Debug("intake: discard session cookie", "error", err)
		return ""
	}
	if err := credentials.CheckExpiry(token, c.opts.Now()); err != nil {
		return ""
	}
	return token
}

// withSession returns the request context carrying the session token for the
// credential provider of the fetchers and pipelines.
func (c *Component) withSession(r *http.Request) context.Context {
	ctx := r.Context()
	if token := c.token(r); token != "" {
		ctx = credentials.WithToken(ctx, token)
	}
	return ctx
}

func (c *Component) storeSession(w http.ResponseWriter, token string) error {
	sealed, err := c.opts.Sealer.Seal(purposeSession, token)
	if err != nil {
		return err
	}
	maxAge := c.opts.SessionTTL
	if exp, ok := credentials.Expiry(token); ok {
		if remaining := exp.Sub(c.opts.Now()); remaining < maxAge {
			maxAge = remaining
		}
	}
	http.SetCookie(w, c.cookie(c.opts.SessionCookie, sealed, maxAge))
	return nil
}

func (c *Component) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(c.opts.SessionCookie, "", -1))
}

// csrfToken returns the double-submit token, issuing a cookie when the
// request carries none.
func (c *Component) csrfToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(c.opts.CSRFCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, c.cookie(c.opts.CSRFCookie, token, c.opts.SessionTTL))
	return token
}

// checkCSRF compares the submitted field with the cookie. The form must be
// parsed already.
func (c *Component) checkCSRF(r *http.Request) error {
	cookie, err := r.Cookie(c.opts.CSRFCookie)
	if err != nil || cookie.Value == "" {
		return ErrCSRF
	}
	submitted := strings.TrimSpace(r.PostFormValue(c.opts.CSRFField))
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(cookie.Value)) != 1 {
		return ErrCSRF
	}
	return nil
}

func (c *Component) setFlash(w http.ResponseWriter, level, message string) {
	data, err := json.Marshal(render.Flash{Level: level, Message: message})
	if err != nil {
		return
	}
	sealed, err := c.opts.Sealer.Seal(purposeFlash, string(data))
	if err != nil {
		c.opts.Logger.Warn("intake: seal flash", "error", err)
		return
	}
	http.SetCookie(w, c.cookie(c.opts.FlashCookie, sealed, time.Minute))
}

// takeFlash reads and clears the pending flash.
func (c *Component) takeFlash(w http.ResponseWriter, r *http.Request) []render.Flash {
	cookie, err := r.Cookie(c.opts.FlashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, c.cookie(c.opts.FlashCookie, "", -1))

	raw, err := c.opts.Sealer.Open(purposeFlash, cookie.Value)
	if err != nil {
		return nil
	}
	var flash render.Flash
	if err := json.Unmarshal([]byte(raw), &flash); err != nil || flash.Message == "" {
		return nil
	}
	return []render.Flash{flash}
}

func (c *Component) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	switch {
	case maxAge < 0:
		cookie.MaxAge = -1
	case maxAge > 0:
		cookie.MaxAge = int(maxAge / time.Second)
		if cookie.MaxAge == 0 {
			cookie.MaxAge = 1
		}
	}
	return cookie
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
