// Package model defines shared data types for the options backend.
//
// Conventions:
//   - Prices: float64 dollars, 0.0 when the vendor omits the field
//   - Volume: int64 shares, 0 when the vendor omits the field
//   - Symbols: uppercase alphanumeric underlying tickers (1-4 chars)
package model
