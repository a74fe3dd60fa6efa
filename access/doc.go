// Package access is the pure authorization evaluator: functions mapping a
// principal and a requirement (role set or section name) to an allow/deny
// answer.
//
// # Architecture boundaries
//
// Every function in this package is total and side-effect free: no I/O, no
// state, no error returns. Absent (nil) principals deny unconditionally;
// unknown role or section names yield false rather than failing.
//
// # What this package must NOT do
//
//   - Read session state (callers pass the principal explicitly).
//   - Perform redirects or any other guard side effects.
//   - Interpret paths — section extraction belongs to the guard.
package access
