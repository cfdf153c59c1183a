package httpserver

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/yndnr/stakewatch/internal/core/service"
	"github.com/yndnr/stakewatch/internal/server/httpserver/handler"
)

// RouterConfig holds the services and limits behind the REST API.
type RouterConfig struct {
	Users      *service.UserService
	Tokens     *service.TokenService
	Validators *service.ValidatorService

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimit is the allowed requests per second per client IP
	// (0 = unlimited).
	RateLimit float64

	// MaxBodyBytes caps request bodies (0 = unlimited).
	MaxBodyBytes int64

	// EnableAudit logs every request.
	EnableAudit bool

	// TrustedProxies may set X-Forwarded-For / X-Real-IP. Empty means the
	// socket address is always the client.
	TrustedProxies TrustedProxies
}

// DefaultRouterConfig returns a configuration with auditing on and no
// limits; services still need to be set.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:      slog.Default(),
		EnableAudit: true,
	}
}

// NewRegistry builds the route table: ping, users, tokens and validators.
func NewRegistry(cfg *RouterConfig) *handler.Registry {
	return handler.NewRegistry().
		HandleFunc("ping", handler.Ping).
		Handle("users", handler.NewUsers(cfg.Users)).
		Handle("tokens", handler.NewTokens(cfg.Tokens)).
		Handle("validators", handler.NewValidators(cfg.Validators))
}

// NewRouter assembles the dispatcher and middleware. The same handler serves
// the HTTP and HTTPS listeners.
//
// Order: Recover -> RequestID -> CORS -> Metrics -> Audit -> RateLimit -> Dispatcher
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	reg := NewRegistry(cfg)
	dispatcher := handler.NewDispatcher(reg,
		handler.WithMaxBodyBytes(cfg.MaxBodyBytes),
		handler.WithLogger(log),
	)

	middlewares := []Middleware{
		Recover(log),
		RequestID(log),
		CORS(),
		Metrics(reg.Segments()),
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log, cfg.TrustedProxies))
	}
	if cfg.RateLimit > 0 {
		burst := int(math.Ceil(cfg.RateLimit))
		middlewares = append(middlewares, RateLimit(cfg.RateLimit, burst, cfg.TrustedProxies, log))
	}

	return Chain(dispatcher, middlewares...)
}
