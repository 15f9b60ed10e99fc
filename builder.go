package goConsole

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/goConsole/api"
	"github.com/MrEthical07/goConsole/permission"
	"github.com/MrEthical07/goConsole/session"
)

// Builder assembles an [Engine]. Configure it with the With methods, then call Build once.
type Builder struct {
	config     Config
	storage    session.Storage
	httpClient *http.Client
	routes     *RouteTable
	auditSink  AuditSink
	logger     *slog.Logger
	notifier   Notifier

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The value is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets Backend.BaseURL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Backend.BaseURL = baseURL
	return b
}

// WithStorage selects the durable session storage. Without it the session lives in
// memory only.
func (b *Builder) WithStorage(s session.Storage) *Builder {
	b.storage = s
	return b
}

// WithHTTPClient sets the HTTP client used for backend calls.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithRoutes replaces the default route table.
func (b *Builder) WithRoutes(t *RouteTable) *Builder {
	b.routes = t
	return b
}

// WithAuditSink sets where audit events go. Audit is off unless Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. The default discards records.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithNotifier sets the receiver of user-visible notifications.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithMetricsEnabled turns the in-process counters on or off.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms records the user-fetch latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, restores the durable session and returns the
// engine. A builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	return b.BuildContext(context.Background())
}

// BuildContext is Build with a context for the storage reads of the restore step.
func (b *Builder) BuildContext(ctx context.Context) (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- PERMISSION UNIVERSE --------
	universe := permission.DefaultUniverse()
	if len(cfg.Permission.Universe) > 0 {
		u, err := permission.NewUniverse(cfg.Permission.Universe)
		if err != nil {
			return nil, err
		}
		universe = u
	}

	routes := b.routes
	if routes == nil {
		routes = DefaultRouteTable()
	}
	for name, p := range map[string]string{"Login": cfg.Routes.Login, "Forbidden": cfg.Routes.Forbidden} {
		r, ok := routes.Lookup(p)
		if !ok || !r.Public {
			return nil, errors.New("Routes " + name + " must be a public route of the route table")
		}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notifier := b.notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}

	engine := &Engine{
		config:      cfg,
		store:       session.NewStore(b.storage),
		resolver:    permission.NewResolver(universe, cfg.Permission.AdminRole),
		routes:      routes,
		logger:      logger,
		notifier:    notifier,
		permissions: permission.Set{},
	}

	// -------- BACKEND CLIENT --------
	client, err := api.New(api.Config{
		BaseURL:        cfg.Backend.BaseURL,
		Timeout:        cfg.Backend.Timeout,
		HTTPClient:     b.httpClient,
		Tokens:         api.TokenFunc(engine.Token),
		OnUnauthorized: engine.handleUnauthorized,
		Logger:         logger,
		UserAgent:      cfg.Backend.UserAgent,
		RateLimit:      cfg.Backend.RateLimit,
		RateBurst:      cfg.Backend.RateBurst,
	})
	if err != nil {
		return nil, err
	}
	engine.client = client
	engine.gateways = api.NewGateways(client)

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	if err := engine.restore(ctx); err != nil {
		engine.Close()
		return nil, err
	}

	b.built = true

	return engine, nil
}
