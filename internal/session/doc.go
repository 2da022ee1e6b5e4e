// Package session owns the client's authentication state.
//
// [Store] is an explicitly constructed container for the current
// {token, user}. It is created once by the command runner and handed to every
// component that needs it; there is no package-level instance. Each
// transition (login, register, logout, set user, set token) replaces the whole
// state under one lock, and storage writes happen before the in-memory swap so
// a failure leaves the previous state intact.
//
// [Resolver] handles the OAuth redirect: it persists a ?token= credential
// immediately, resolves the profile from the backend and falls back to the
// token's unverified claims when that request fails.
//
// The store also serves as an [oauth2.TokenSource] so HTTP clients attach the
// current bearer token without touching session internals.
package session
