// Package middleware provides composable request middleware for the MCP
// dispatcher.
//
// Each middleware wraps the next handler in the chain:
//
//	chain := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
//	handler := chain(dispatcher.HandleRequest)
//
// Available middleware: Recover (panic to internal error), RequestID,
// Timeout, Logging, RateLimit (fortify token bucket), OTel (traces and
// metrics). DefaultStack returns the recommended production set.
//
// Transport policy (authentication, per-client rate limiting, CORS) is not
// middleware; it lives in the transport package and runs before dispatch.
package middleware
