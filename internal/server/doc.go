// Package server exposes the benchmark over HTTP.
//
// Routes:
//
//	GET  /                      fixed status payload
//	GET  /health                version, open sessions, results store health
//	POST /benchmark/start       bulk payload (also /api/benchmark/start)
//	GET  /stream                live updates over server-sent events
//	GET  /ws                    live updates over WebSocket
//	POST /benchmark/results     submit a measurement
//	GET  /benchmark/results     list measurements
//	GET  /metrics               Prometheus exposition (path configurable)
package server
