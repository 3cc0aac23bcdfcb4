package auth

import "errors"

var (
	// ErrAuthFailed is returned when a presented token does not resolve to a
	// live session: unknown, expired, or pointing at a deleted user. The
	// reasons are deliberately not distinguished to the caller.
	ErrAuthFailed = errors.New("auth: authentication failed")

	// ErrNoToken is returned when a request carries no session credential at
	// all.
	ErrNoToken = errors.New("auth: no token presented")

	// ErrInvalidCredentials is returned on login when the account does not
	// exist or the password does not match. The two cases are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrPasswordNotSet is returned on password login against an account
	// that only has OAuth identities.
	ErrPasswordNotSet = errors.New("auth: no password set for account")

	// ErrAccountDisabled is returned when credentials are valid but the
	// account is disabled.
	ErrAccountDisabled = errors.New("auth: account disabled")

	// ErrEmailTaken is returned on signup when a user with the email already
	// exists.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrRegistrationClosed is returned on signup when self-registration is
	// switched off.
	ErrRegistrationClosed = errors.New("auth: registration closed")

	// ErrInvalidEmail and ErrInvalidPassword reject malformed signup input.
	ErrInvalidEmail    = errors.New("auth: invalid email address")
	ErrInvalidPassword = errors.New("auth: password must be 8-24 characters")

	// ErrInvalidKey is returned when an email confirmation key is unknown or
	// already used.
	ErrInvalidKey = errors.New("auth: invalid confirmation key")
)
