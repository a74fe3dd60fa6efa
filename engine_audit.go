package navgate

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventSessionRestored          = "session_restored"
	auditEventSessionRestoreCorrupt    = "session_restore_corrupt"
	auditEventSessionStorageDown       = "session_storage_unavailable"
	auditEventLoginSuccess             = "login_success"
	auditEventLoginFailure             = "login_failure"
	auditEventLogout                   = "logout"
	auditEventGuardAdmit               = "guard_admit"
	auditEventGuardDenyUnauthenticated = "guard_deny_unauthenticated"
	auditEventGuardDenyUnauthorized    = "guard_deny_unauthorized"
)

func (e *Engine) emitAudit(ctx context.Context, eventType string, mutate func(*AuditEvent)) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
	}
	if mutate != nil {
		mutate(&event)
	}

	e.audit.Emit(ctx, event)
}
