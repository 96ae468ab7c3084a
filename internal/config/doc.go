// Package config handles configuration loading, parsing, and validation
// from environment variables (prefix TAREAS_) and an optional config.yaml.
// It provides type-safe access to server, database, auth, rate limiting and
// bootstrap settings while keeping configuration details separate from
// business logic.
package config
