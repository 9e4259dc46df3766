// Package auth implements the authentication gate for the listd API.
//
// Every request except registration, login, and the operational endpoints
// passes through the gate before reaching a handler. Authenticators vote
// with three outcomes (Yes/No/Abstain) and are evaluated in a chain; the
// resolved caller identity is attached to the request context for the
// lifetime of that request only.
//
// The gate is deliberately decoupled from any routing framework: it wraps
// a plain http.Handler, so it can be tested with httptest against any
// handler and reused unchanged if the routing layer changes.
package auth
