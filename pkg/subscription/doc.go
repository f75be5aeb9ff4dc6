// Package subscription resolves what a user is entitled to see and keeps
// that answer fresh as billing state changes.
//
// The Resolver is the read path: it answers "what access level does this
// subject hold" from a TTL cache, falling back to a rate-limited, retried
// lookup against a LookupSource (postgres in production, memory in tests).
// Lookup failures degrade toward the FREE tier and are never cached, so a
// flapping database cannot poison the cache or lock paying users out.
//
// The Service is the write path: it creates checkout and customer portal
// links through a BillingProvider (Paddle) and applies provider webhook
// events to the Store, invalidating the resolver cache for the affected
// user so the next request observes the new tier.
package subscription
