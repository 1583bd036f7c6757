package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/metrics"
	"github.com/aussiebroadwan/teller/internal/bank/service"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/aussiebroadwan/teller/pkg/slogx"

	_ "github.com/aussiebroadwan/teller/api/bank" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// LimiterFactory builds the limiter behind one rate limited route group.
// scope keeps the counters of different groups apart in a shared backend.
type LimiterFactory func(scope string, cfg httpx.RateLimitConfig) httpx.Limiter

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux     *http.ServeMux
	handler http.Handler

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	LoginService   *service.LoginService
	SessionService *service.SessionService
	DepositService *service.DepositService
	Cookies        *CookieManager

	// Metrics is optional, nil disables /metrics and request instrumentation.
	Metrics *metrics.Metrics

	// Limiters defaults to one in-memory limiter per route group.
	Limiters LimiterFactory
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
}

func (r *Router) ApplyRoutes() {
	if r.Limiters == nil {
		r.Limiters = func(_ string, cfg httpx.RateLimitConfig) httpx.Limiter {
			return httpx.NewMemoryLimiter(cfg)
		}
	}

	r.registerAuth()
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// metrics must sit directly on the mux to see the matched pattern
	r.handler = httpx.Chain(r.Mux,
		slogx.HTTPMiddleware(r.logger),
		r.Metrics.Middleware,
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Teller Banking API
//	@version		0.1.0
//	@description	Two step login (password then emailed one-time code), cookie based sessions with refresh rotation, and teller deposits.
//	@description
//	@description				Access and refresh tokens are EdDSA signed JWTs, verifiable with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/teller
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}". Browsers send the access cookie instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) limit(scope string, cfg httpx.RateLimitConfig, key httpx.KeyExtractor) httpx.Middleware {
	return httpx.RateLimit(r.Limiters(scope, cfg), cfg, key)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Login:    r.LoginService,
		Sessions: r.SessionService,
		Cookies:  r.Cookies,
	}

	// Credentials: strict, by IP and by the email being tried
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.limit("login", httpx.StrictLimit, httpx.CompositeKeyExtractor(":",
				httpx.IPKeyExtractor,
				httpx.JSONFieldKeyExtractor("email"),
			)),
		),
	)

	// OTP guessing is the other brute force target
	r.Mux.Handle("POST /v1/auth/otp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			r.limit("otp", httpx.StrictLimit, httpx.IPKeyExtractor),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.limit("refresh", httpx.LenientLimit, httpx.IPKeyExtractor),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.limit("logout", httpx.LenientLimit, httpx.IPKeyExtractor),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Deposits: r.DepositService}
	byUser := httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)

	r.Mux.Handle("GET /v1/accounts/deposit",
		httpx.Chain(http.HandlerFunc(h.HandleLookup),
			httpx.AuthnMiddleware(r.verifier, banksdk.CookieAccess),
			r.limit("account_lookup", httpx.LenientLimit, byUser),
		),
	)
	r.Mux.Handle("POST /v1/accounts/deposit",
		httpx.Chain(http.HandlerFunc(h.HandleDeposit),
			httpx.AuthnMiddleware(r.verifier, banksdk.CookieAccess),
			r.limit("deposit", httpx.ModerateLimit, byUser),
		),
	)
}

func (r *Router) registerSystem() {
	public := r.limit("public", httpx.PublicLimit, httpx.IPKeyExtractor)

	r.Mux.Handle("GET /.well-known/jwks.json", httpx.Chain(JWKSHandler(r.keys), public))
	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), public))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys), public),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
