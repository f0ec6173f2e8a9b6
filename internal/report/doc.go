// Package report stores benchmark measurements submitted by the frontends.
//
// Two Store implementations exist: MemoryStore keeps the most recent reports
// in a fixed-size ring, PostgresStore persists them in a single table.
package report
