// Package transport defines the HTTP middleware chain and error mapping
// for the listd API.
//
// The transport layer bridges external clients and the core services. It
// deserializes incoming requests into the types defined in pkg/api,
// dispatches them to the account, storage, authorization, and insight
// services, and serializes results back as JSON.
//
// # Error mapping
//
// Every error reaching the transport is an *api.APIError (or is wrapped
// into one). HTTPStatusFromError maps the error taxonomy to status codes
// in exactly one place; the wire body is always the flat
// {"error": "<message>"} object.
//
// # Middleware
//
// Middleware is plain func(http.Handler) http.Handler. Built-in middleware
// provides panic recovery, request ID assignment (X-Request-ID), and
// structured logging via log/slog. The authentication gate from pkg/auth
// and the metrics middleware from pkg/observability slot into the same
// chain.
package transport
