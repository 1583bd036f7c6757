package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/pkg/banksdk"
)

// CookieManager owns the session cookies. Setting and clearing go through
// the same attributes so a clear always hits the cookie that was set.
type CookieManager struct {
	Path       string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ParseSameSite maps lax, strict and none onto http.SameSite.
func ParseSameSite(s string) (http.SameSite, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax", "":
		return http.SameSiteLaxMode, true
	case "strict":
		return http.SameSiteStrictMode, true
	case "none":
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteDefaultMode, false
}

// SetSession writes the access, refresh and logged_in cookies for pair.
// The refresh cookie is skipped when the pair has no refresh token.
func (c *CookieManager) SetSession(w http.ResponseWriter, pair domain.TokenPair) {
	http.SetCookie(w, c.cookie(banksdk.CookieAccess, pair.AccessToken, c.AccessTTL, true))
	if pair.RefreshToken != "" {
		http.SetCookie(w, c.cookie(banksdk.CookieRefresh, pair.RefreshToken, c.RefreshTTL, true))
	}

	// readable by scripts so a frontend can tell it has a session
	http.SetCookie(w, c.cookie(banksdk.CookieLoggedIn, "true", c.AccessTTL, false))
}

// Clear expires all three session cookies.
func (c *CookieManager) Clear(w http.ResponseWriter) {
	for _, name := range []string{banksdk.CookieAccess, banksdk.CookieRefresh} {
		http.SetCookie(w, c.expired(name, true))
	}
	http.SetCookie(w, c.expired(banksdk.CookieLoggedIn, false))
}

func (c *CookieManager) cookie(name, value string, ttl time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.path(),
		Domain:   c.Domain,
		MaxAge:   int(ttl.Seconds()),
		Secure:   c.Secure,
		HttpOnly: httpOnly,
		SameSite: c.SameSite,
	}
}

func (c *CookieManager) expired(name string, httpOnly bool) *http.Cookie {
	ck := c.cookie(name, "", 0, httpOnly)
	ck.MaxAge = -1
	return ck
}

func (c *CookieManager) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}
