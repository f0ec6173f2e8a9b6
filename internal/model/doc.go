// Package model defines shared data types used across the render benchmark service.
//
// Conventions:
//   - JSON field names are camelCase to match what the browser frontends consume
//   - Timestamps: time.Time in UTC, serialized as RFC 3339 with nanoseconds
//   - Bulk records are tier-tagged: one concrete struct per Complexity
package model
