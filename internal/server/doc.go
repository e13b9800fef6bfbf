// Package server runs the loopback HTTP server used by `plcopy auth`.
//
// # Routing
//
// [BasicRouter] implements [Router] on top of [http.ServeMux] method patterns. [Middleware] is applied in the order
// it was added, so the first middleware is the outermost. [RequestLogger] and [Recoverer] are the two the callback
// server installs.
//
// # OAuth callback
//
// [OAuthHandler] finishes the authorization code flow: it checks the state token, exchanges the code with the
// token endpoint and publishes a single [OAuthResult]. A second callback is rejected.
//
// [CallbackServer] binds the handler to a local address, reports the redirect URI it is reachable at and waits for
// the result with a timeout, shutting itself down afterwards.
package server
