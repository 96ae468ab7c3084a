// Package store defines interfaces for task and user persistence, the
// errors every implementation returns, and transaction helpers for the
// database-backed implementations. Business rules stay independent of the
// storage technology: see store/memory for the in-process implementation
// and platform/postgres for PostgreSQL.
package store
