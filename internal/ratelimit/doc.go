// Package ratelimit implements a sliding-window rate limiter for outbound
// vendor API calls.
//
// Tradier market data limits (https://docs.tradier.com/docs/rate-limiting):
//   - Production: 120 requests per minute
//   - Sandbox: 60 requests per minute
//
// The limiter tracks admission timestamps in a trailing window and blocks
// callers until admitting one more request would stay under the ceiling.
// The ceiling adapts at runtime from X-Ratelimit-Allowed response headers.
package ratelimit
