// Package memory provides in-process implementations of the store
// interfaces. They back the server when no database URL is configured and
// the service tests.
package memory
