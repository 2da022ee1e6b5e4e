// Package server runs the short-lived localhost HTTP server that receives the
// Google OAuth redirect.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// The backend finishes Google sign-in by redirecting the browser to any route
// of the client with ?token=<credential>. [CallbackHandler] serves every path,
// ignores requests without a token, and hands the first tokened request to a
// [Resolver] (normally a session.Resolver). The outcome is delivered once on
// [CallbackHandler.Result]; later callbacks are rejected.
//
// [Listen] binds the listener up front so address errors surface before the
// browser is opened.
package server
