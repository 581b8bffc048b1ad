package router

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/config"
	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/handler"
	"github.com/astacala/gateway/internal/middleware"
	"github.com/astacala/gateway/internal/repository"
	"github.com/astacala/gateway/internal/surface"
)

// Deps are the process-level collaborators the router wires together.
// Redis may be nil (no rate limiting) and Events may be nil (no publishing).
type Deps struct {
	Config config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Events events.Publisher
	Log    *zap.Logger
}

// New builds the echo instance: core middleware, health and metrics, and
// both surfaces' endpoint tables. The role policy and the surface tables are
// validated here so a misconfiguration stops the process at startup.
func New(d Deps) (*echo.Echo, error) {
	policy, err := BuildPolicy()
	if err != nil {
		return nil, fmt.Errorf("build policy: %w", err)
	}
	adapter, err := surface.NewDefault(d.Log)
	if err != nil {
		return nil, fmt.Errorf("build surface tables: %w", err)
	}
	pub := d.Events
	if pub == nil {
		pub = events.Nop{}
	}
	cfg := d.Config

	users := repository.NewUserRepo(d.DB)
	tokenRepo := repository.NewTokenRepo(d.DB)
	verifier := auth.NewVerifier(users, auth.VerifierOptions{
		LegacyDomain: cfg.LegacyLoginDomain,
		StoreTimeout: cfg.StoreTimeout,
		BcryptCost:   cfg.BcryptCost,
	}, d.Log)
	tokens := auth.NewTokenService(tokenRepo, auth.TokenOptions{TTL: cfg.TokenTTL, StoreTimeout: cfg.StoreTimeout}, d.Log)
	authn := auth.NewAuthenticator(tokens, users, cfg.StoreTimeout, d.Log)
	authz := auth.NewAuthorizer(d.Log)
	tickets := auth.NewChannelTickets(cfg.BroadcastSecret, cfg.BroadcastTicketTTL)

	base := handler.Base{Adapter: adapter, Events: pub, Log: d.Log.Named("handler"), StoreTimeout: cfg.StoreTimeout}
	h := &handlers{
		auth:      handler.NewAuthHandler(base, verifier, tokens, users),
		profile:   handler.NewProfileHandler(base, users),
		report:    handler.NewReportHandler(base),
		admin:     handler.NewAdminHandler(base, users, tokens),
		broadcast: handler.NewBroadcastHandler(base, tickets),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(d.Log)
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))

	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(d.DB, d.Log))
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	limiter := middleware.NewTokenBucket(cfg.RateLimit, d.Redis, d.Log)
	tokenAuth := middleware.TokenAuth(authn, d.Log)
	register(e.Group(MobilePrefix, middleware.WithSurface(surface.Mobile)), Endpoints(surface.Mobile), h, policy, authz, tokenAuth, limiter, d.Log)
	register(e.Group(middleware.LegacyPrefix, middleware.WithSurface(surface.Legacy)), Endpoints(surface.Legacy), h, policy, authz, tokenAuth, limiter, d.Log)

	d.Log.Info("routes registered",
		zap.Int("mobile", len(Endpoints(surface.Mobile))),
		zap.Int("legacy", len(Endpoints(surface.Legacy))),
		zap.Strings("protected", policy.Endpoints()))
	return e, nil
}

// register mounts eps on g. Protected endpoints get token authentication
// followed by the policy check. Rate limiting runs before both.
func register(g *echo.Group, eps []Endpoint, h *handlers, policy *auth.Policy, authz *auth.Authorizer,
	tokenAuth, limiter echo.MiddlewareFunc, log *zap.Logger) {
	for _, ep := range eps {
		var mw []echo.MiddlewareFunc
		if ep.RateLimited {
			mw = append(mw, limiter)
		}
		if ep.Protected() {
			mw = append(mw, tokenAuth, middleware.Authorize(ep.ID, policy, authz, log))
		}
		g.Add(ep.Method, ep.Path, ep.bind(h), mw...)
	}
}
