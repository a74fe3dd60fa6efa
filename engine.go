package navgate

import (
	"context"

	"github.com/navgate/navgate/guard"
	"github.com/navgate/navgate/login"
	"github.com/navgate/navgate/route"
	"github.com/navgate/navgate/session"
	"github.com/navgate/navgate/storage"
)

// Engine is the assembled core: the session store, the navigation guard,
// the optional login client, and the audit pipeline, wired by [Builder].
// Engine methods are safe for concurrent use after Build.
type Engine struct {
	config      Config
	storage     storage.Store
	sessions    *session.Store
	routes      *route.Table
	guard       *guard.Guard
	loginClient *login.Client
	audit       *auditDispatcher
}

// Initialize restores the session from durable storage. Corrupt or partial
// persisted state fails closed to logged out; nothing is surfaced as an
// error because "not logged in" is a valid steady state. Call once at
// startup before routing begins — guard decisions block until this settles.
func (e *Engine) Initialize(ctx context.Context) session.RestoreOutcome {
	if e == nil || e.sessions == nil {
		return session.RestoreUnavailable
	}

	outcome := e.sessions.Initialize(ctx)

	switch outcome {
	case session.RestoreOK:
		e.emitAudit(ctx, auditEventSessionRestored, func(ev *AuditEvent) {
			ev.Success = true
			ev.PrincipalID = principalID(e.sessions)
		})
	case session.RestoreCorrupt:
		e.emitAudit(ctx, auditEventSessionRestoreCorrupt, func(ev *AuditEvent) {
			ev.Error = "persisted principal record unparseable"
		})
	case session.RestoreUnavailable:
		e.emitAudit(ctx, auditEventSessionStorageDown, func(ev *AuditEvent) {
			ev.Error = "durable storage unreadable"
		})
	}

	return outcome
}

// Login exchanges credentials at the configured endpoint, populates the
// session store, and resolves the post-login destination: the pending
// redirect when a denial recorded one, the default landing path otherwise.
// The pending value is destroyed on read. Failures are generic —
// [ErrLoginFailed] regardless of cause — and leave the session untouched.
func (e *Engine) Login(ctx context.Context, username, password string) (string, error) {
	if e == nil || e.sessions == nil {
		return "", ErrEngineNotReady
	}
	if e.loginClient == nil {
		return "", ErrLoginUnconfigured
	}

	if err := e.loginClient.Login(ctx, username, password); err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, func(ev *AuditEvent) {
			ev.Error = err.Error()
		})
		return "", ErrLoginFailed
	}

	landing := e.guard.ConsumeRedirect(ctx)
	e.emitAudit(ctx, auditEventLoginSuccess, func(ev *AuditEvent) {
		ev.Success = true
		ev.PrincipalID = principalID(e.sessions)
		ev.Path = landing
	})
	return landing, nil
}

// Logout clears the persisted and in-memory session. Idempotent.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	id := principalID(e.sessions)
	err := e.sessions.Logout(ctx)
	e.emitAudit(ctx, auditEventLogout, func(ev *AuditEvent) {
		ev.Success = err == nil
		ev.PrincipalID = id
		if err != nil {
			ev.Error = err.Error()
		}
	})
	return err
}

// CanActivate gates one navigation attempt; see [guard.Guard.CanActivate].
func (e *Engine) CanActivate(ctx context.Context, path string) guard.Decision {
	if e == nil || e.guard == nil {
		return guard.Decision{Reason: guard.ReasonUnauthenticated}
	}

	decision := e.guard.CanActivate(ctx, path)

	eventType := auditEventGuardAdmit
	switch decision.Reason {
	case guard.ReasonUnauthenticated:
		eventType = auditEventGuardDenyUnauthenticated
	case guard.ReasonUnauthorized:
		eventType = auditEventGuardDenyUnauthorized
	}
	e.emitAudit(ctx, eventType, func(ev *AuditEvent) {
		ev.Success = decision.Allow
		ev.Path = path
		ev.Reason = decision.Reason.String()
		ev.PrincipalID = principalID(e.sessions)
	})

	return decision
}

// ConsumeRedirect returns and destroys the pending redirect, or the default
// landing path when none is pending. Hosts that drive the login flow
// themselves (bypassing [Engine.Login]) call this once after a successful
// login.
func (e *Engine) ConsumeRedirect(ctx context.Context) string {
	return e.guard.ConsumeRedirect(ctx)
}

// Session returns the session store for direct observation (subscriptions,
// snapshots) and for hosts that populate it without the login client.
func (e *Engine) Session() *session.Store {
	return e.sessions
}

// Guard returns the navigation guard, for hosts that wire it into a router
// without going through the engine facade.
func (e *Engine) Guard() *guard.Guard {
	return e.guard
}

// AuditDropped reports how many audit events were dropped under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close drains and stops the audit pipeline.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

func principalID(s *session.Store) string {
	if p := s.Principal(); p != nil {
		return p.ID
	}
	return ""
}
