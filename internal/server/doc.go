// Package server captures OAuth2 authorization codes on a loopback address.
//
// # Callback Listener
//
// [Listen] binds the address registered as the redirect URI and immediately starts a background task that
// accepts exactly one connection, closes the listening socket and reads a single HTTP request. Only the query
// string matters: any path is accepted.
//
// A request carrying a non-empty code parameter is answered with 200 and the code is delivered. Anything else is
// answered with 400 and delivered as an authorization error. Either way the listener is done.
//
// The task owns the send side of a one-slot channel and writes it exactly once. [CallbackListener.Wait] races
// that channel against the caller's context; on cancellation it closes the socket and the in-flight connection
// and reports an authorization error wrapping the context error.
//
// # Authorizer
//
// [Authorizer] ties the listener to the console: it prints the consent URL, optionally opens the system browser,
// and waits. Platform clients use it as their authorization code source.
package server
