// Package user defines the account-side records persisted in the collection
// store: users, their avatar images, and threaded comments.
//
// A [User] may authenticate with a password (hash stored inline), through an
// external OAuth provider (no password hash, linked [Identity] entries), or
// both. Email uniqueness is enforced by a linear scan before insert, not by
// a storage constraint; [FindByEmail] returns the first match.
//
// Comments are stored in parent-scoped sub-collections named
// "<parent-id>_comments", one per commented entity, so fetching a thread
// never scans unrelated parents.
package user
