// Package snapshot implements the quotes snapshot store and its
// background refresher.
//
// The refresher:
//   - Waits a short startup delay, runs one cycle, then one per interval
//   - Chunks the sorted symbol universe into bounded batches
//   - Fetches batches concurrently under an in-flight cap, each call
//     gated by the vendor rate limiter
//   - Absorbs per-batch failures and publishes a new snapshot only when
//     the cycle produced at least one quote
//
// Readers never block on a cycle: the store hands out copies of the most
// recently published snapshot, which is replaced as one atomic unit.
package snapshot
