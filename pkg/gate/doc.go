// Package gate is the request-facing orchestrator: it classifies the
// requested path, resolves the subject's entitlement, and produces an
// allow-or-redirect decision. Open routes never touch the resolver, and any
// unexpected failure inside authorization fails closed to the sign-in page
// rather than leaking protected content.
//
// The package also ships the HTTP surface: a middleware applying decisions
// to an http.Handler chain, and a chi router exposing the billing endpoints
// (checkout, customer portal, provider webhook).
package gate
