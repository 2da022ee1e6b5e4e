// Package services talks to the lecture notes backend over its REST contract.
//
// # Transport
//
// [APIService] is the single HTTP primitive. It reads every response in full,
// records whether the body parsed as JSON, and throttles requests through an
// optional [rate.Limiter]. Transport failures wrap [shared.ErrServiceUnavailable];
// non-2xx responses become [*APIError] carrying the body's "message" or "error"
// field, or a generic message.
//
// Authenticated endpoints go through an [oauth2.Transport] whose token source
// is the session store, so no service ever handles the bearer token directly
// except [AuthService.Me], which is called with a token that has not yet been
// adopted by the session.
//
// # Endpoints
//
//   - [AuthService] : login, register, current profile, Google OAuth entry point
//   - [FilesService] : folders and files (bearer token required)
//   - [AudioService] : recording upload and the demo transcription path
//   - [SummaryService] : text summarization
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrServiceUnavailable] : network unreachable
//   - [shared.ErrAPIRequest] : wrapped by every [*APIError]
//   - [shared.ErrContract] : 2xx response missing required fields
//   - [shared.ErrNotAuthenticated] : no token available for an authenticated call
//
// Nothing is retried.
package services
