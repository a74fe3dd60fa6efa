// Package session owns the process-wide authentication state: the token,
// the current principal, and the authenticated flag, persisted through a
// [github.com/navgate/navgate/storage.Store].
//
// # Invariant
//
// token present ⇔ principal present ⇔ authenticated. The three are one
// atomic triple: every mutating operation sets all of them inside a single
// critical section, and there is no public API that can move one without
// the others. A guard decision therefore always reflects one consistent
// snapshot, never a value straddling two writes.
//
// # Lifecycle
//
// A store is created empty, settled once by [Store.Initialize] (restore
// from durable storage, failing closed on anything suspect), and thereafter
// mutated only by [Store.Login] and [Store.Logout].
package session
