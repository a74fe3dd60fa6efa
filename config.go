package navgate

import (
	"errors"

	"github.com/navgate/navgate/guard"
	"github.com/navgate/navgate/session"
)

// Config defines the fixed destinations, storage keys, and policy mode an
// [Engine] runs under. Instances are configured once through the [Builder]
// and treated as immutable afterwards.
type Config struct {
	Routing RoutingConfig
	Session SessionConfig
	Policy  PolicyConfig
	Login   LoginConfig
	Audit   AuditConfig
}

// RoutingConfig names the fixed redirect destinations.
type RoutingConfig struct {
	// LoginPath is where unauthenticated attempts are redirected.
	LoginPath string
	// ProtectedRoot is the base path of the protected subtree.
	ProtectedRoot string
	// DeniedPath is where authenticated-but-forbidden attempts are
	// redirected. Defaults to ProtectedRoot with an error query parameter
	// the landing page surfaces.
	DeniedPath string
	// DefaultLandingPath is returned by redirect consumption when no
	// pending redirect exists. Defaults to ProtectedRoot.
	DefaultLandingPath string
}

// SessionConfig names the durable-storage keys.
type SessionConfig struct {
	TokenKey     string
	PrincipalKey string
	RedirectKey  string
}

// PolicyConfig selects the authorization policy.
type PolicyConfig struct {
	// Mode is [guard.ModeRouteRoles] (canonical) or
	// [guard.ModeSectionFromPath] (legacy).
	Mode guard.Mode
}

// LoginConfig locates the remote login collaborator.
type LoginConfig struct {
	// Endpoint is the backend login URL. Empty disables [Engine.Login];
	// the host may still populate the session store directly.
	Endpoint string
}

// AuditConfig controls the async audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of applying backpressure when the
	// buffer is full. Dropped counts are visible via [Engine.AuditDropped].
	DropIfFull bool
}

// DefaultConfig returns the defaults matching the backend's web client:
// /public/login for the login detour, /auth as the protected root, and the
// web client's localStorage key names, so both clients share one persisted
// session.
func DefaultConfig() Config {
	return Config{
		Routing: RoutingConfig{
			LoginPath:     "/public/login",
			ProtectedRoot: "/auth",
		},
		Session: SessionConfig{
			TokenKey:     "authToken",
			PrincipalKey: "currentUser",
			RedirectKey:  "redirectUrl",
		},
		Policy: PolicyConfig{Mode: guard.ModeRouteRoles},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func fillConfigDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Routing.LoginPath == "" {
		cfg.Routing.LoginPath = def.Routing.LoginPath
	}
	if cfg.Routing.ProtectedRoot == "" {
		cfg.Routing.ProtectedRoot = def.Routing.ProtectedRoot
	}
	if cfg.Routing.DeniedPath == "" {
		cfg.Routing.DeniedPath = cfg.Routing.ProtectedRoot + "?error=access-denied"
	}
	if cfg.Routing.DefaultLandingPath == "" {
		cfg.Routing.DefaultLandingPath = cfg.Routing.ProtectedRoot
	}
	if cfg.Session.TokenKey == "" {
		cfg.Session.TokenKey = def.Session.TokenKey
	}
	if cfg.Session.PrincipalKey == "" {
		cfg.Session.PrincipalKey = def.Session.PrincipalKey
	}
	if cfg.Session.RedirectKey == "" {
		cfg.Session.RedirectKey = def.Session.RedirectKey
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
}

func validateConfig(cfg Config) error {
	if cfg.Policy.Mode != guard.ModeRouteRoles && cfg.Policy.Mode != guard.ModeSectionFromPath {
		return errors.New("config: invalid policy mode")
	}
	if cfg.Routing.LoginPath == cfg.Routing.DeniedPath {
		return errors.New("config: login and denied destinations must differ")
	}
	return nil
}

func (c Config) sessionKeys() session.Keys {
	return session.Keys{Token: c.Session.TokenKey, Principal: c.Session.PrincipalKey}
}

func (c Config) guardConfig() guard.Config {
	return guard.Config{
		Policy: guard.Policy{
			Mode:          c.Policy.Mode,
			LoginPath:     c.Routing.LoginPath,
			DeniedPath:    c.Routing.DeniedPath,
			ProtectedRoot: c.Routing.ProtectedRoot,
		},
		RedirectKey:    c.Session.RedirectKey,
		DefaultLanding: c.Routing.DefaultLandingPath,
	}
}
