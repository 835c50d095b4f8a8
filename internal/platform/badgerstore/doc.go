// Package badgerstore provides a BadgerDB-backed implementation of
// store.SessionStore for deployments that keep sessions out of PostgreSQL.
package badgerstore
