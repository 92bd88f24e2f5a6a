// Package store provides backup-store implementations for fetched SAML
// metadata documents: a per-URL file store and a postgres-backed store for
// deployments where every instance must share the same backup copy.
package store

import "errors"

// NoDocumentFound is returned by Get when the store has no copy of the
// document for the given URL.
var NoDocumentFound = errors.New("no document found")
