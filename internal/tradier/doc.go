// Package tradier provides the Tradier market data API client.
//
// REST endpoints:
//   - Production: https://api.tradier.com/v1
//   - Sandbox: https://sandbox.tradier.com/v1
//
// All requests pass through a shared sliding-window rate limiter before
// hitting the wire, and the limiter ceiling is updated from the
// X-Ratelimit-* response headers on every response.
package tradier
