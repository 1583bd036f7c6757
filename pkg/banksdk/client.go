package banksdk

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Cookie names set by the bank on a successful OTP verification.
const (
	CookieAccess   = "access"
	CookieRefresh  = "refresh"
	CookieLoggedIn = "logged_in"
)

// SDKClient talks to the bank API. It keeps the session cookies in a jar
// so the login, OTP, refresh and deposit calls chain the way a browser
// would.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// BearerToken, when set, is sent as an Authorization header. Useful for
	// service callers that don't keep cookies.
	BearerToken string
}

// NewSDKClient creates a client with its own cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // never errors with nil options

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Cookie returns the value of a session cookie held for the base URL,
// or "" if the jar has none.
func (c *SDKClient) Cookie(name string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}
