// Package principal defines the identity model shared by the session store
// and the access evaluator: a [Principal] and the [Role] assignments it holds.
//
// The JSON tags match the backend's wire shape so a persisted principal
// record round-trips unchanged through durable storage.
package principal
