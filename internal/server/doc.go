// Package server exposes the HTTP API over the quote snapshot core.
//
// Endpoints:
//   - GET  /healthz, /healthz/secrets, /version
//   - GET  /v1/markets/options/symbols
//   - POST /v1/markets/options/symbols/refresh
//   - GET  /v1/markets/quotes/snapshot?symbols=AAPL,MSFT
//   - GET  /v1/markets/quotes/last_update
//   - GET  /v1/markets/quotes/status
//   - GET  /v1/markets/chain?symbol=AAPL&expiry=2025-02-21
//   - GET  /v1/markets/options/expirations?symbol=AAPL
//
// Snapshot and symbol reads are served from in-memory state and never
// block on vendor calls; only the chain/expiration pass-throughs and the
// manual symbol refresh hit the network.
package server
