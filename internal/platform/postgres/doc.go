// Package postgres provides PostgreSQL implementations of the store
// interfaces, the embedded goose migrations that create their schema, and
// connection setup through the pgx database/sql driver.
package postgres
