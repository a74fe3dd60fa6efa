// Package guard decides whether a navigation attempt into the protected
// part of the application may proceed.
//
// The decision logic is the pure function [Evaluate]; the [Guard] type wraps
// it with the two effects a real attempt needs — a one-shot read of the
// session store and the pending-redirect bookkeeping — so the host routing
// framework only has to invoke [Guard.CanActivate] and act on the returned
// [Decision].
//
// # What this package must NOT do
//
//   - Mutate session state (login and logout are the store's writers).
//   - Hold a subscription beyond a single attempt.
//   - Panic or error on any input: every attempt maps to a Decision.
package guard
