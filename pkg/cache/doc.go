// Package cache provides a thread-safe in-memory TTL cache with hit/miss
// statistics and explicit invalidation.
//
// Entries expire lazily: a Get past the entry's deadline deletes it and
// reports a miss. When the cache is at capacity, Set first sweeps expired
// entries instead of evicting live ones; under sustained load with long
// TTLs the map may therefore exceed the nominal cap until entries age out.
// That is a deliberate memory-bound tradeoff, not an eviction-quality one.
//
// A miss is the normal path to a fresh lookup, never an error.
//
// Basic usage:
//
//	c := cache.NewTTL[string, int](cache.Config{DefaultTTL: 5 * time.Minute, MaxEntries: 1000})
//
//	c.Set("user_123", 42, 0) // 0 applies the default TTL
//	if v, ok := c.Get("user_123"); ok {
//		// hit
//	}
//
// Run the janitor for background cleanup bound to a lifecycle:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	go c.StartJanitor(ctx, 10*time.Minute)
package cache
