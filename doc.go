// Package navgate is the client-side session and navigation-gating core: it
// tracks whether the process is authenticated, derives from the principal's
// roles which application sections may be entered, and gates every protected
// navigation attempt with an admit/deny/redirect decision.
//
// navgate is a defense-in-depth and UX layer, not a security boundary of
// record — the backend is assumed to enforce authorization independently.
// Tokens are opaque here: no refresh, no cryptographic verification.
//
// # Architecture boundaries
//
// navgate is the public surface. It exposes [Engine], [Builder], [Config],
// the audit types, and sentinel errors. The moving parts live in focused
// subpackages: session (the atomic token/principal/flag triple), access
// (the pure evaluator), guard (the decision point), route (protected-route
// metadata), storage (durable backends), and login (the remote collaborator).
//
// # What this package must NOT do
//
//   - Render anything or own routing — the host framework invokes
//     [Engine.CanActivate] and acts on the returned decision.
//   - Distinguish login failure causes; callers get one generic signal.
//   - Leak storage backends or subscriptions through the public API.
package navgate
