// Package api is a REST client for the benchmark service.
//
// Endpoints:
//   - POST /benchmark/start     bulk payload
//   - POST /benchmark/results   submit a measurement
//   - GET  /benchmark/results   list measurements
//   - GET  /health              service health
//
// Requests that fail with 5xx or 429 are retried with jittered exponential
// backoff.
package api
