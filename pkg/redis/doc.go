// Package redis connects go-redis clients for the distributed rate limit
// store, with startup retries and a health check helper.
package redis
