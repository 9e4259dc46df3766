// Package api defines the domain types, identifiers, error taxonomy, and
// request validation for the listd task-list service.
//
// The types here are the wire format: handlers decode requests into the
// *Request structs, validate them, and encode the domain structs back as
// JSON. Password hashes are never serialized.
package api
