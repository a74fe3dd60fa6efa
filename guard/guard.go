package guard

import (
	"context"

	"github.com/navgate/navgate/access"
	"github.com/navgate/navgate/route"
	"github.com/navgate/navgate/session"
	"github.com/navgate/navgate/storage"
)

// Reason classifies a [Decision].
type Reason int

const (
	// ReasonAdmitted means the navigation may proceed.
	ReasonAdmitted Reason = iota
	// ReasonUnauthenticated means no session exists; the caller is sent to
	// the login destination and the attempted path is remembered.
	ReasonUnauthenticated
	// ReasonUnauthorized means the session lacks the required role or
	// section; the caller is sent to the access-denied destination.
	ReasonUnauthorized
)

// String returns the audit label for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonAdmitted:
		return "admitted"
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one navigation attempt. When Allow is false,
// RedirectTo names the destination the host router must send the caller to.
type Decision struct {
	Allow      bool
	RedirectTo string
	Reason     Reason
}

// Mode selects which authorization policy governs routes that are past the
// authentication check.
type Mode int

const (
	// ModeRouteRoles is the canonical policy: the required role set comes
	// from route metadata and is checked with [access.HasAnyRole]. Routes
	// without metadata are authenticated-only.
	ModeRouteRoles Mode = iota

	// ModeSectionFromPath is the legacy policy: the section is derived
	// from the last non-empty path segment and checked with
	// [access.HasSectionAccess]. Kept for deployments whose role grants
	// still enumerate sections; new route tables should declare roles.
	ModeSectionFromPath
)

// Policy is the fixed configuration [Evaluate] decides under.
type Policy struct {
	// Mode selects role-metadata (canonical) or section-from-path (legacy)
	// authorization.
	Mode Mode
	// LoginPath is the redirect destination for unauthenticated attempts.
	LoginPath string
	// DeniedPath is the redirect destination for authenticated-but-
	// forbidden attempts, error indicator included.
	DeniedPath string
	// ProtectedRoot is the base path of the protected subtree. Under
	// ModeSectionFromPath an attempt at the root itself is admitted once
	// authenticated, regardless of roles.
	ProtectedRoot string
}

// Evaluate is the pure decision core: one consistent session snapshot, one
// requested path, the route's declared metadata (nil when it declares none),
// and the policy, mapped to a [Decision]. It is total — every input yields a
// decision, never an error — and performs no side effects; recording the
// pending redirect is [Guard.CanActivate]'s job.
//
// When a route declares metadata it always wins: the two policy modes are
// never combined on one route.
func Evaluate(snap session.Snapshot, path string, meta *route.Meta, pol Policy) Decision {
	if !snap.Authenticated {
		return Decision{RedirectTo: pol.LoginPath, Reason: ReasonUnauthenticated}
	}

	if meta != nil {
		if access.HasAnyRole(snap.Principal, meta.Roles) {
			return Decision{Allow: true, Reason: ReasonAdmitted}
		}
		return Decision{RedirectTo: pol.DeniedPath, Reason: ReasonUnauthorized}
	}

	if pol.Mode == ModeSectionFromPath {
		section := route.Section(path)
		if section == "" || section == route.Section(pol.ProtectedRoot) {
			// The bare protected root carries no section of its own;
			// authentication is enough to reach the layout shell.
			return Decision{Allow: true, Reason: ReasonAdmitted}
		}
		if access.HasSectionAccess(snap.Principal, section) {
			return Decision{Allow: true, Reason: ReasonAdmitted}
		}
		return Decision{RedirectTo: pol.DeniedPath, Reason: ReasonUnauthorized}
	}

	// Canonical mode, no metadata: authenticated-only route.
	return Decision{Allow: true, Reason: ReasonAdmitted}
}

// Config wires a [Guard].
type Config struct {
	Policy Policy
	// RedirectKey is the durable-storage key the pending redirect lives
	// under. Default "redirectUrl".
	RedirectKey string
	// DefaultLanding is what [Guard.ConsumeRedirect] returns when no
	// pending redirect exists. Default is the policy's protected root.
	DefaultLanding string
}

// Guard is the single choke point every protected navigation attempt passes
// through. It reads one session snapshot per attempt, delegates the decision
// to [Evaluate], and performs the pending-redirect side effect on
// unauthenticated denials.
type Guard struct {
	sessions       *session.Store
	routes         *route.Table
	storage        storage.Store
	policy         Policy
	redirectKey    string
	defaultLanding string
}

// New creates a guard over the given session store, route table, and
// durable storage. The route table may be nil when running purely under the
// legacy section policy.
func New(sessions *session.Store, routes *route.Table, st storage.Store, cfg Config) *Guard {
	if cfg.RedirectKey == "" {
		cfg.RedirectKey = "redirectUrl"
	}
	if cfg.DefaultLanding == "" {
		cfg.DefaultLanding = cfg.Policy.ProtectedRoot
	}
	return &Guard{
		sessions:       sessions,
		routes:         routes,
		storage:        st,
		policy:         cfg.Policy,
		redirectKey:    cfg.RedirectKey,
		defaultLanding: cfg.DefaultLanding,
	}
}

// CanActivate decides one navigation attempt at the given path. The session
// read is one-shot: it blocks only until the store's initial restore has
// settled, then takes a single consistent snapshot — no subscription
// outlives the attempt. The host router invokes CanActivate both on entry
// into the protected subtree and on every move between protected children.
//
// An unauthenticated denial records the attempted path as the pending
// redirect (last denial wins) before redirecting to login. An unauthorized
// denial leaves the pending redirect untouched.
func (g *Guard) CanActivate(ctx context.Context, path string) Decision {
	snap, err := g.sessions.Await(ctx)
	if err != nil {
		// The attempt was cancelled before state settled; deny toward
		// login without recording intent.
		return Decision{RedirectTo: g.policy.LoginPath, Reason: ReasonUnauthenticated}
	}

	var meta *route.Meta
	if g.routes != nil {
		if m, ok := g.routes.Lookup(path); ok {
			meta = &m
		}
	}

	decision := Evaluate(snap, path, meta, g.policy)
	if decision.Reason == ReasonUnauthenticated {
		// Best effort: a dead storage backend degrades to losing the
		// return-to intent, never to blocking the denial itself.
		_ = g.storage.Set(ctx, g.redirectKey, path)
	}
	return decision
}

// ConsumeRedirect returns the pending redirect and destroys it, so a second
// call (or a login with no prior denial) yields the default landing path.
// Storage trouble reads as "no pending redirect".
func (g *Guard) ConsumeRedirect(ctx context.Context) string {
	path, err := g.storage.Get(ctx, g.redirectKey)
	_ = g.storage.Delete(ctx, g.redirectKey)
	if err != nil || path == "" {
		return g.defaultLanding
	}
	return path
}
