// Package database opens the PostgreSQL pool used by the results store.
//
// The pool is optional: the server only connects when results.driver is
// "postgres". Schema setup lives with the store in internal/report.
package database
