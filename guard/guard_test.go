package guard

import (
	"context"
	"testing"

	"github.com/navgate/navgate/principal"
	"github.com/navgate/navgate/route"
	"github.com/navgate/navgate/session"
	"github.com/navgate/navgate/storage"
)

const (
	loginPath  = "/public/login"
	deniedPath = "/auth?error=access-denied"
)

func testPolicy(mode Mode) Policy {
	return Policy{
		Mode:          mode,
		LoginPath:     loginPath,
		DeniedPath:    deniedPath,
		ProtectedRoot: "/auth",
	}
}

func productsPrincipal() *principal.Principal {
	return &principal.Principal{
		ID:       "u1",
		Username: "alice",
		Roles: []principal.Role{
			{ID: "r1", Name: "user", AuthorizedSections: []string{"products"}},
		},
	}
}

// newTestGuard returns a guard over a fresh memory backend and an already
// initialized (empty) session store.
func newTestGuard(t *testing.T, mode Mode, routes *route.Table) (*Guard, *session.Store, *storage.Memory) {
	t.Helper()

	mem := storage.NewMemory()
	sessions := session.NewStore(mem, session.DefaultKeys())
	sessions.Initialize(context.Background())

	g := New(sessions, routes, mem, Config{Policy: testPolicy(mode)})
	return g, sessions, mem
}

func TestUnauthenticatedDeniedTowardLogin(t *testing.T) {
	g, _, mem := newTestGuard(t, ModeSectionFromPath, nil)
	ctx := context.Background()

	decision := g.CanActivate(ctx, "/auth/users")

	if decision.Allow {
		t.Fatal("unauthenticated attempt must be denied")
	}
	if decision.Reason != ReasonUnauthenticated {
		t.Fatalf("reason = %v, want unauthenticated", decision.Reason)
	}
	if decision.RedirectTo != loginPath {
		t.Fatalf("redirect = %q, want %q", decision.RedirectTo, loginPath)
	}

	pending, err := mem.Get(ctx, "redirectUrl")
	if err != nil {
		t.Fatalf("pending redirect not recorded: %v", err)
	}
	if pending != "/auth/users" {
		t.Fatalf("pending redirect = %q, want /auth/users", pending)
	}
}

func TestAuthenticatedWithoutSectionDeniedTowardDeniedPath(t *testing.T) {
	g, sessions, mem := newTestGuard(t, ModeSectionFromPath, nil)
	ctx := context.Background()

	if err := sessions.Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	decision := g.CanActivate(ctx, "/auth/users")

	if decision.Allow {
		t.Fatal("attempt without section access must be denied")
	}
	if decision.Reason != ReasonUnauthorized {
		t.Fatalf("reason = %v, want unauthorized", decision.Reason)
	}
	if decision.RedirectTo != deniedPath {
		t.Fatalf("redirect = %q, want %q", decision.RedirectTo, deniedPath)
	}

	// Unauthorized (as opposed to unauthenticated) denials leave the
	// pending redirect untouched.
	if _, err := mem.Get(ctx, "redirectUrl"); err != storage.ErrNotFound {
		t.Fatalf("pending redirect must stay unset, got err=%v", err)
	}
}

func TestAuthorizedSectionAdmitted(t *testing.T) {
	g, sessions, _ := newTestGuard(t, ModeSectionFromPath, nil)
	ctx := context.Background()

	if err := sessions.Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	decision := g.CanActivate(ctx, "/auth/products")

	if !decision.Allow {
		t.Fatalf("expected admit, got %+v", decision)
	}
	if decision.Reason != ReasonAdmitted {
		t.Fatalf("reason = %v, want admitted", decision.Reason)
	}
	if decision.RedirectTo != "" {
		t.Fatalf("admit must not redirect, got %q", decision.RedirectTo)
	}
}

func TestProtectedRootAdmittedOnceAuthenticated(t *testing.T) {
	g, sessions, _ := newTestGuard(t, ModeSectionFromPath, nil)
	ctx := context.Background()

	if err := sessions.Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	for _, path := range []string{"/auth", "/auth/", "/"} {
		decision := g.CanActivate(ctx, path)
		if !decision.Allow {
			t.Fatalf("base path %q must be admitted regardless of roles: %+v", path, decision)
		}
	}
}

func TestRouteRolesModeMetadataChecked(t *testing.T) {
	routes := route.NewTable()
	routes.Add(route.Meta{Path: "/auth/users", Roles: []string{"admin"}})
	routes.Add(route.Meta{Path: "/auth/products", Roles: []string{"user", "admin"}})

	g, sessions, _ := newTestGuard(t, ModeRouteRoles, routes)
	ctx := context.Background()

	if err := sessions.Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	if d := g.CanActivate(ctx, "/auth/products"); !d.Allow {
		t.Fatalf("role user must admit /auth/products: %+v", d)
	}
	if d := g.CanActivate(ctx, "/auth/users"); d.Allow || d.Reason != ReasonUnauthorized {
		t.Fatalf("role user must be denied /auth/users: %+v", d)
	}
}

func TestRouteRolesModeNoMetadataIsAuthenticatedOnly(t *testing.T) {
	g, sessions, _ := newTestGuard(t, ModeRouteRoles, route.NewTable())
	ctx := context.Background()

	if err := sessions.Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	if d := g.CanActivate(ctx, "/auth/anything"); !d.Allow {
		t.Fatalf("undeclared route must be authenticated-only: %+v", d)
	}
}

func TestMetadataWinsOverSectionPolicy(t *testing.T) {
	// The principal holds the products *section* but not the admin *role*;
	// with metadata declared, the role requirement is authoritative even
	// under the legacy mode.
	routes := route.NewTable()
	routes.Add(route.Meta{Path: "/auth/products", Roles: []string{"admin"}})

	g, sessions, _ := newTestGuard(t, ModeSectionFromPath, routes)
	ctx := context.Background()

	if err := sessions.Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	if d := g.CanActivate(ctx, "/auth/products"); d.Allow {
		t.Fatalf("declared metadata must override the section policy: %+v", d)
	}
}

func TestEmptyRoleMetadataAdmitsAuthenticated(t *testing.T) {
	routes := route.NewTable()
	routes.Add(route.Meta{Path: "/auth/profile"})

	g, sessions, _ := newTestGuard(t, ModeRouteRoles, routes)
	ctx := context.Background()

	if err := sessions.Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	if d := g.CanActivate(ctx, "/auth/profile"); !d.Allow {
		t.Fatalf("empty role requirement means authenticated-only: %+v", d)
	}
}

func TestPendingRedirectLastDenialWins(t *testing.T) {
	g, _, _ := newTestGuard(t, ModeSectionFromPath, nil)
	ctx := context.Background()

	g.CanActivate(ctx, "/auth/users")
	g.CanActivate(ctx, "/auth/roles")

	if got := g.ConsumeRedirect(ctx); got != "/auth/roles" {
		t.Fatalf("pending redirect = %q, want the last denied path", got)
	}
}

func TestConsumeRedirectDestroysOnRead(t *testing.T) {
	g, _, _ := newTestGuard(t, ModeSectionFromPath, nil)
	ctx := context.Background()

	g.CanActivate(ctx, "/auth/roles")

	if got := g.ConsumeRedirect(ctx); got != "/auth/roles" {
		t.Fatalf("first consume = %q, want /auth/roles", got)
	}
	if got := g.ConsumeRedirect(ctx); got != "/auth" {
		t.Fatalf("second consume = %q, want default landing", got)
	}
}

func TestConsumeRedirectDefaultWhenNonePending(t *testing.T) {
	g, _, _ := newTestGuard(t, ModeSectionFromPath, nil)

	if got := g.ConsumeRedirect(context.Background()); got != "/auth" {
		t.Fatalf("consume with nothing pending = %q, want default landing", got)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	snap := session.Snapshot{Authenticated: true, Token: "t", Principal: productsPrincipal()}
	pol := testPolicy(ModeSectionFromPath)

	first := Evaluate(snap, "/auth/users", nil, pol)
	second := Evaluate(snap, "/auth/users", nil, pol)

	if first != second {
		t.Fatalf("same inputs produced different decisions: %+v vs %+v", first, second)
	}
}

func TestCanActivateWaitsForInitialize(t *testing.T) {
	mem := storage.NewMemory()
	sessions := session.NewStore(mem, session.DefaultKeys())
	ctx := context.Background()

	// Seed a valid persisted session but delay Initialize until after the
	// attempt starts: the guard must observe the restored state, not an
	// implicit "not authenticated".
	if err := session.NewStore(mem, session.DefaultKeys()).Login(ctx, "tok-1", productsPrincipal()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	g := New(sessions, nil, mem, Config{Policy: testPolicy(ModeSectionFromPath)})

	done := make(chan Decision, 1)
	go func() {
		done <- g.CanActivate(ctx, "/auth/products")
	}()

	sessions.Initialize(ctx)

	if d := <-done; !d.Allow {
		t.Fatalf("guard must wait for restore and then admit: %+v", d)
	}
}
