// Package middleware adapts the navigation guard to net/http routers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// implement gating logic itself — every decision is delegated to
// Engine.CanActivate, and the middleware only acts on the returned
// Decision: redirect on deny, pass through with the principal in context
// on admit.
//
// # What this package must NOT do
//
//   - Read or mutate session state directly.
//   - Inspect route metadata (the guard owns policy).
//   - Distinguish denial causes beyond the redirect it is handed.
package middleware
