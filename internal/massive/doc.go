// Package massive is a client for the Massive (Polygon) options snapshot
// API. It serves as the fallback chain vendor when the primary vendor
// fails, and is only wired up when an API key is configured.
package massive
