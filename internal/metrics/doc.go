// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Active stream sessions, session ends by reason and session duration
//   - Batches emitted and tick duration
//   - Bulk requests and records generated per complexity tier
//   - Validation failures and HTTP request rates/latencies
package metrics
