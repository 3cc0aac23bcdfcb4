// Package auth manages credentials and sessions on top of the collection
// store: password hashing, access-token issuance and resolution, email
// confirmation keys, and the HTTP session surface (bearer header and
// session cookie).
//
// Tokens are plain store records — possession of the token id is the
// credential. A token carries a scope ([ScopePublic] or [ScopeComplete]) and
// a named lifetime; expiry is enforced lazily at resolution time, when the
// expired record is also deleted. A user may hold several live tokens at
// once, one per browser/client context.
//
// The package is transport-light: [Manager.UserFromRequest] reads an
// *http.Request but nothing here starts a server or registers routes.
package auth
