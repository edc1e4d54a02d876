// Package universe maintains the in-memory set of optionable underlying
// symbols.
//
// The registry refreshes the set from the OCC directory feed once on
// startup and daily thereafter (cron-scheduled), and exposes copy-on-read
// accessors. A failed refresh, including one that parses zero symbols,
// preserves the previous set: stale data beats no data.
package universe
