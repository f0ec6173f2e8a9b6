// Package bulk synthesizes the one-shot benchmark payload.
//
// Each call to Generate is independent: it validates the request, draws from
// its own random source and returns exactly PayloadSize records with ids
// 0..PayloadSize-1. Nothing is shared with streaming sessions.
package bulk
