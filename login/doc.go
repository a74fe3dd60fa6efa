// Package login is the remote login collaborator: it trades credentials for
// a token and principal record and hands them to the session store. The
// token is opaque to this module — no format validation, no cryptographic
// verification; the backend is the trust boundary.
package login
