// Package route holds the metadata collaborator: the table of protected
// routes and the role names each declares. Deployments usually load the
// table from a YAML document at startup; the guard only ever reads it.
package route
