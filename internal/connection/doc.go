// Package connection implements stream consumers for the live update feed.
//
// Two transports are supported:
//   - SSE: GET /stream, frames of "data: <json>" separated by blank lines
//   - WebSocket: GET /ws, one JSON text message per batch
//
// Both decode every batch and hand it to a callback together with the local
// receive time.
package connection
