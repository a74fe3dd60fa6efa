// Package storage provides the durable key/value stores the session layer
// persists its token, principal record, and pending redirect through.
//
// Three backends ship with the module: [Memory] for tests and ephemeral
// runs, [File] for a single-host local profile, and [Redis] for shared
// state. All three expose the same minimal [Store] contract; the session
// layer treats a missing key and a corrupt value identically (fail closed),
// so backends are free to surface corruption as absence.
package storage
