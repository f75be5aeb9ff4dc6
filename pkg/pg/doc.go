// Package pg establishes pgx connection pools for the subscription lookup
// path. Connection attempts run through the retry executor with the database
// policy, and error helpers classify pgx failures for callers.
package pg
