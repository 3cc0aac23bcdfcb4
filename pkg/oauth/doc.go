// Package oauth implements external-identity login: provider adapters over
// golang.org/x/oauth2 and a [Resolver] that turns a fetched provider
// profile into a local user account.
//
// Each supported provider (GitHub, Google, Discord, Facebook) implements
// the [Provider] interface and handles its own quirks internally, including
// email verification checks — a profile returned from FetchProfile always
// carries a verified email.
//
// The resolver implements login-or-register keyed on email. A returning
// user is matched by email; an unknown email registers a new confirmed,
// passwordless account when registration is open. An existing account whose
// email was never confirmed is overwritten in place, because the provider
// has verified ownership of the address and the unconfirmed local record
// cannot prove it.
package oauth
