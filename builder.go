package navgate

import (
	"net/http"

	"github.com/navgate/navgate/guard"
	"github.com/navgate/navgate/login"
	"github.com/navgate/navgate/route"
	"github.com/navgate/navgate/session"
	"github.com/navgate/navgate/storage"
)

// Builder assembles an [Engine]. Configure it with the With* methods, then
// call [Builder.Build] exactly once.
type Builder struct {
	config     Config
	storage    storage.Store
	routes     *route.Table
	httpClient *http.Client
	auditSink  AuditSink

	built bool
}

// New creates a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Zero-valued fields are
// filled from defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage sets the durable storage backend. Required.
func (b *Builder) WithStorage(st storage.Store) *Builder {
	b.storage = st
	return b
}

// WithRoutes sets the protected-route metadata table. Optional under the
// legacy section policy; under the canonical role policy a missing table
// makes every protected route authenticated-only.
func (b *Builder) WithRoutes(tbl *route.Table) *Builder {
	b.routes = tbl
	return b
}

// WithHTTPClient sets the HTTP client the login collaborator uses. Optional;
// defaults to [http.DefaultClient].
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithAuditSink sets the audit destination. Optional; audit events are
// discarded when unset.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and wires the engine. The returned
// engine still needs one [Engine.Initialize] call before routing begins.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if b.storage == nil {
		return nil, ErrStorageRequired
	}

	cfg := b.config
	fillConfigDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	sessions := session.NewStore(b.storage, cfg.sessionKeys())
	g := guard.New(sessions, b.routes, b.storage, cfg.guardConfig())

	engine := &Engine{
		config:   cfg,
		storage:  b.storage,
		sessions: sessions,
		routes:   b.routes,
		guard:    g,
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
	}
	if cfg.Login.Endpoint != "" {
		engine.loginClient = login.NewClient(cfg.Login.Endpoint, b.httpClient, sessions)
	}

	b.built = true
	return engine, nil
}
