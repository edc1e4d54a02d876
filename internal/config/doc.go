// Package config loads and validates the server configuration.
//
// Configuration is a YAML file with ${VAR} environment variable
// expansion, so secrets like the Tradier API token never live in the
// file itself. Defaults are applied for every optional field; see
// defaults.go for the table.
package config
