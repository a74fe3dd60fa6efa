package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/navgate/navgate/principal"
	"github.com/navgate/navgate/storage"
)

// Keys names the durable-storage entries the store persists through.
type Keys struct {
	Token     string
	Principal string
}

// DefaultKeys returns the storage key names the backend's web client uses,
// so both clients can share one persisted session.
func DefaultKeys() Keys {
	return Keys{Token: "authToken", Principal: "currentUser"}
}

// Snapshot is a single consistent view of the session triple. Authenticated
// is true iff Token and Principal are both present; a Snapshot never carries
// a mixed state.
type Snapshot struct {
	Authenticated bool
	Token         string
	Principal     *principal.Principal
}

// RestoreOutcome reports what [Store.Initialize] found in durable storage.
type RestoreOutcome int

const (
	// RestoreNone means no persisted session was found.
	RestoreNone RestoreOutcome = iota
	// RestoreOK means a persisted session was restored.
	RestoreOK
	// RestoreCorrupt means the persisted principal record failed to parse
	// and the session was cleared.
	RestoreCorrupt
	// RestoreUnavailable means durable storage could not be read and the
	// session degraded to logged out.
	RestoreUnavailable
)

// Store holds the process-wide authentication state: token, principal, and
// the authenticated flag. The three always move together — every mutating
// path sets the whole triple under one lock, so no observer can see a token
// without a principal or vice versa.
//
// Mutations are [Store.Login] and [Store.Logout]; [Store.Initialize] replays
// one of them from durable storage at startup. Everything else is a read.
type Store struct {
	storage storage.Store
	keys    Keys

	mu            sync.Mutex
	authenticated bool
	token         string
	prin          *principal.Principal
	initialized   bool
	ready         chan struct{}
	subs          map[int]chan bool
	nextSub       int
}

// NewStore creates a session store persisting through st under the given
// keys. The store starts empty and uninitialized; call [Store.Initialize]
// once at startup before routing begins.
func NewStore(st storage.Store, keys Keys) *Store {
	if keys.Token == "" || keys.Principal == "" {
		keys = DefaultKeys()
	}
	return &Store{
		storage: st,
		keys:    keys,
		ready:   make(chan struct{}),
		subs:    make(map[int]chan bool),
	}
}

// Initialize reads the persisted token and principal record. Both present
// and parseable restores the authenticated session; a missing entry, a
// record that fails to parse, or an unreadable backend all fail closed to
// logged out. Parse failures additionally clear the persisted entries, the
// same effect as [Store.Logout].
//
// Initialize never surfaces an error: "not logged in" is a valid steady
// state, not a failure. It marks the store initialized on every path,
// releasing [Store.Await] callers.
func (s *Store) Initialize(ctx context.Context) RestoreOutcome {
	token, tokenErr := s.storage.Get(ctx, s.keys.Token)
	record, recordErr := s.storage.Get(ctx, s.keys.Principal)

	switch {
	case isUnavailable(tokenErr) || isUnavailable(recordErr):
		s.setState(false, "", nil)
		return RestoreUnavailable

	case tokenErr != nil || recordErr != nil:
		// One or both entries absent: treat identically to corruption,
		// minus the audit distinction.
		s.clear(ctx)
		return RestoreNone
	}

	var p principal.Principal
	if err := json.Unmarshal([]byte(record), &p); err != nil {
		s.clear(ctx)
		return RestoreCorrupt
	}

	s.setState(true, token, &p)
	return RestoreOK
}

// Login unconditionally overwrites the persisted and in-memory session and
// marks it authenticated. No token format validation happens here; the
// trust boundary is the remote login call. The returned error reports
// persistence trouble only — the in-memory session is authenticated either
// way, so a storage outage degrades to a non-durable login rather than a
// failed one.
func (s *Store) Login(ctx context.Context, token string, p *principal.Principal) error {
	record, err := json.Marshal(p)
	if err != nil {
		return err
	}

	s.setState(true, token, p)

	return errors.Join(
		s.storage.Set(ctx, s.keys.Token, token),
		s.storage.Set(ctx, s.keys.Principal, string(record)),
	)
}

// Logout clears the persisted and in-memory session. It is idempotent:
// logging out an already-logged-out store leaves the same cleared state.
func (s *Store) Logout(ctx context.Context) error {
	return s.clear(ctx)
}

func (s *Store) clear(ctx context.Context) error {
	s.setState(false, "", nil)

	return errors.Join(
		s.storage.Delete(ctx, s.keys.Token),
		s.storage.Delete(ctx, s.keys.Principal),
	)
}

// Authenticated returns the last-known authentication flag without waiting
// for initialization.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Token returns the current credential, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Principal returns the current principal snapshot, or nil when logged out.
// Callers must treat the returned value as read-only.
func (s *Store) Principal() *principal.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prin
}

// Snapshot returns the full session triple as one consistent value.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Authenticated: s.authenticated, Token: s.token, Principal: s.prin}
}

// Await blocks until the store has been initialized (the durable-storage
// read has settled), then returns a consistent snapshot. This is the guard's
// one-shot read: waiting for the first value avoids the flicker-deny race
// where a navigation lands before storage restoration finishes. Uninitialized
// state is never reported as an implicit "not authenticated".
func (s *Store) Await(ctx context.Context) (Snapshot, error) {
	select {
	case <-s.ready:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Subscribe registers an observer of the authenticated flag. The returned
// channel is primed with the current value and then receives the new flag on
// every transition; a slow receiver coalesces to the latest value rather
// than blocking mutations. The cancel func detaches the observer.
func (s *Store) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan bool, 1)
	ch <- s.authenticated

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// setState is the single mutation point: the triple changes together, the
// ready gate opens on first settle, and observers are notified, all under
// one critical section.
func (s *Store) setState(authenticated bool, token string, p *principal.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = authenticated
	s.token = token
	s.prin = p

	if !s.initialized {
		s.initialized = true
		close(s.ready)
	}

	for _, ch := range s.subs {
		select {
		case ch <- authenticated:
		default:
			// Stale value pending: replace it with the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- authenticated:
			default:
			}
		}
	}
}

func isUnavailable(err error) bool {
	return err != nil && !errors.Is(err, storage.ErrNotFound)
}
