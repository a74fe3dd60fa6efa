package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/navgate/navgate/principal"
	"github.com/navgate/navgate/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	return NewStore(mem, DefaultKeys()), mem
}

func testPrincipal() *principal.Principal {
	return &principal.Principal{
		ID:       "u1",
		Username: "alice",
		Roles: []principal.Role{
			{ID: "r1", Name: "admin", AuthorizedSections: []string{"products", "users"}},
		},
	}
}

func assertTripleConsistent(t *testing.T, snap Snapshot) {
	t.Helper()
	hasToken := snap.Token != ""
	hasPrincipal := snap.Principal != nil
	if snap.Authenticated != hasToken || snap.Authenticated != hasPrincipal {
		t.Fatalf("mixed session state: authenticated=%v token=%q principal=%v",
			snap.Authenticated, snap.Token, snap.Principal)
	}
}

func TestInitializeEmptyStorage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if outcome := store.Initialize(ctx); outcome != RestoreNone {
		t.Fatalf("outcome = %v, want RestoreNone", outcome)
	}
	if store.Authenticated() {
		t.Fatal("empty storage must restore to logged out")
	}
	assertTripleConsistent(t, store.Snapshot())
}

func TestLoginInitializeRoundTrip(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	first := NewStore(mem, DefaultKeys())
	if err := first.Login(ctx, "tok-123", testPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Simulated process restart: a fresh store over the same storage.
	second := NewStore(mem, DefaultKeys())
	if outcome := second.Initialize(ctx); outcome != RestoreOK {
		t.Fatalf("outcome = %v, want RestoreOK", outcome)
	}
	if !second.Authenticated() {
		t.Fatal("expected restored session to be authenticated")
	}
	if second.Token() != "tok-123" {
		t.Fatalf("token = %q, want tok-123", second.Token())
	}

	restored := second.Principal()
	if restored == nil || restored.ID != "u1" || restored.Username != "alice" {
		t.Fatalf("principal not restored: %+v", restored)
	}
	if len(restored.Roles) != 1 || restored.Roles[0].Name != "admin" {
		t.Fatalf("roles not restored: %+v", restored.Roles)
	}
	assertTripleConsistent(t, second.Snapshot())
}

func TestInitializeCorruptPrincipalFailsClosed(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	if err := mem.Set(ctx, "authToken", "tok-123"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := mem.Set(ctx, "currentUser", "{not json"); err != nil {
		t.Fatalf("seed principal: %v", err)
	}

	store := NewStore(mem, DefaultKeys())
	if outcome := store.Initialize(ctx); outcome != RestoreCorrupt {
		t.Fatalf("outcome = %v, want RestoreCorrupt", outcome)
	}
	if store.Authenticated() {
		t.Fatal("corrupt state must fail closed to logged out")
	}

	// Same effect as logout: the persisted entries are gone too.
	if _, err := mem.Get(ctx, "authToken"); err != storage.ErrNotFound {
		t.Fatalf("token entry not cleared: %v", err)
	}
	if _, err := mem.Get(ctx, "currentUser"); err != storage.ErrNotFound {
		t.Fatalf("principal entry not cleared: %v", err)
	}
}

func TestInitializeTokenWithoutPrincipalFailsClosed(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	if err := mem.Set(ctx, "authToken", "tok-123"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	store := NewStore(mem, DefaultKeys())
	if outcome := store.Initialize(ctx); outcome != RestoreNone {
		t.Fatalf("outcome = %v, want RestoreNone", outcome)
	}
	if store.Authenticated() {
		t.Fatal("half-persisted state must read as logged out")
	}
	assertTripleConsistent(t, store.Snapshot())
}

func TestLogoutIdempotent(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	if err := store.Login(ctx, "tok-123", testPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	first := store.Snapshot()

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	second := store.Snapshot()

	if first != second {
		t.Fatalf("logout not idempotent: %+v vs %+v", first, second)
	}
	if second.Authenticated || second.Token != "" || second.Principal != nil {
		t.Fatalf("logout left residue: %+v", second)
	}
	if _, err := mem.Get(ctx, "authToken"); err != storage.ErrNotFound {
		t.Fatal("token entry must be deleted")
	}
}

func TestTripleNeverDiverges(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assertTripleConsistent(t, store.Snapshot())

	store.Initialize(ctx)
	assertTripleConsistent(t, store.Snapshot())

	if err := store.Login(ctx, "tok-1", testPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}
	assertTripleConsistent(t, store.Snapshot())

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	assertTripleConsistent(t, store.Snapshot())
}

func TestAwaitBlocksUntilInitialize(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	got := make(chan Snapshot, 1)
	go func() {
		snap, err := store.Await(ctx)
		if err != nil {
			t.Errorf("await: %v", err)
		}
		got <- snap
	}()

	select {
	case snap := <-got:
		t.Fatalf("await returned before initialize: %+v", snap)
	case <-time.After(20 * time.Millisecond):
	}

	store.Initialize(ctx)

	select {
	case snap := <-got:
		if snap.Authenticated {
			t.Fatal("empty restore must settle to logged out")
		}
	case <-time.After(time.Second):
		t.Fatal("await did not release after initialize")
	}
}

func TestAwaitHonorsContext(t *testing.T) {
	store, _ := newTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := store.Await(ctx); err == nil {
		t.Fatal("await on an uninitialized store must respect ctx deadline")
	}
}

func TestSubscribePrimedAndNotified(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ch, cancel := store.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		if v {
			t.Fatal("initial value must be unauthenticated")
		}
	default:
		t.Fatal("subscription must be primed with the current value")
	}

	if err := store.Login(ctx, "tok-1", testPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	select {
	case v := <-ch:
		if !v {
			t.Fatal("expected authenticated=true after login")
		}
	case <-time.After(time.Second):
		t.Fatal("no notification after login")
	}
}

func TestSubscribeSlowReceiverCoalesces(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ch, cancel := store.Subscribe()
	defer cancel()

	// Never drain the primed value; mutate twice. The channel must hold
	// only the latest flag and the mutations must not block.
	if err := store.Login(ctx, "tok-1", testPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	v := <-ch
	if v {
		t.Fatal("coalesced value must be the latest (logged out)")
	}
}

func TestSubscribeCancelDetaches(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ch, cancel := store.Subscribe()
	<-ch
	cancel()

	if err := store.Login(ctx, "tok-1", testPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("detached subscriber received %v", v)
		}
	default:
	}
}

func TestLoginPersistsWireShape(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	if err := store.Login(ctx, "tok-1", testPrincipal()); err != nil {
		t.Fatalf("login: %v", err)
	}

	record, err := mem.Get(ctx, "currentUser")
	if err != nil {
		t.Fatalf("read persisted principal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(record), &decoded); err != nil {
		t.Fatalf("persisted principal not JSON: %v", err)
	}
	if decoded["id"] != "u1" {
		t.Fatalf("persisted record missing wire field id: %v", decoded)
	}
	if _, ok := decoded["roles"]; !ok {
		t.Fatal("persisted record missing wire field roles")
	}
}
