// Package storage defines the persistence interfaces consumed by the
// listd core, along with the sentinel errors implementations must return.
//
// Two implementations exist: storage/memory for tests and lightweight
// deployments, and storage/postgres backed by pgx/v5.
//
// List and task lookups are owner-filtered at the query level: a resource
// that exists but belongs to a different owner is reported with
// ErrNotFound, exactly like a resource that does not exist. The ownership
// policy in pkg/authz relies on this.
package storage
