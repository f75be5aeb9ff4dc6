// Package metrics exposes prometheus instruments for the access-control
// pipeline behind small recorder interfaces, so domain packages depend on a
// narrow surface and a nil recorder is a safe no-op.
package metrics
