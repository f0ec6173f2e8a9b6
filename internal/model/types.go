package model

import (
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Bulk Types
// -----------------------------------------------------------------------------

// Complexity selects the structural depth of generated bulk records.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Valid reports whether c is one of the enumerated tiers.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// Bulk request limits.
const (
	MinPayloadSize     = 1
	MaxPayloadSize     = 5000
	DefaultPayloadSize = 1000
	DefaultFramework   = "react"
)

// BenchmarkRequest is the body of POST /benchmark/start.
type BenchmarkRequest struct {
	Framework   string     `json:"framework"`
	PayloadSize int        `json:"payloadSize" validate:"min=1,max=5000"`
	Complexity  Complexity `json:"complexity" validate:"oneof=low medium high"`
}

// DefaultBenchmarkRequest returns a request with every field at its default.
// Handlers decode the body on top of it so omitted fields keep their defaults.
func DefaultBenchmarkRequest() BenchmarkRequest {
	return BenchmarkRequest{
		Framework:   DefaultFramework,
		PayloadSize: DefaultPayloadSize,
		Complexity:  ComplexityLow,
	}
}

// Record is one generated bulk item. The concrete type is fixed by the tier.
type Record interface {
	RecordID() int
	Tier() Complexity
}

// BaseRecord carries the six fields every tier has.
type BaseRecord struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Value       int       `json:"value"` // 1-1000
	Active      bool      `json:"active"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// RecordID returns the sequential record id.
func (b BaseRecord) RecordID() int { return b.ID }

// LowRecord is a record with only the base fields.
type LowRecord struct {
	BaseRecord
}

func (LowRecord) Tier() Complexity { return ComplexityLow }

// MediumRecord adds tags and a shallow nested object.
type MediumRecord struct {
	BaseRecord
	Tags   []string     `json:"tags"` // 1-5 entries
	Nested MediumNested `json:"nested"`
}

func (MediumRecord) Tier() Complexity { return ComplexityMedium }

// MediumNested is the nested object of a MediumRecord. Level is always 1.
type MediumNested struct {
	Level int     `json:"level"`
	Score float64 `json:"score"` // [0,1)
}

// HighRecord adds tags, a deeper nested object and an event history.
type HighRecord struct {
	BaseRecord
	Tags    []string       `json:"tags"` // 3-7 entries
	Nested  HighNested     `json:"nested"`
	History []HistoryEntry `json:"history"` // 2-5 entries
}

func (HighRecord) Tier() Complexity { return ComplexityHigh }

// HighNested is the nested object of a HighRecord.
type HighNested struct {
	Level    int            `json:"level"` // 1-3
	Score    float64        `json:"score"` // [0,1)
	Metadata RecordMetadata `json:"metadata"`
}

// Priority is the metadata priority of a HighRecord.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in draw order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// RecordMetadata describes who created a HighRecord and its priority.
type RecordMetadata struct {
	CreatedBy string   `json:"createdBy"`
	Priority  Priority `json:"priority"`
}

// HistoryEntry is one event in a HighRecord history.
type HistoryEntry struct {
	Event string `json:"event"`
	Count int    `json:"count"` // 1-10
}

// BenchmarkResponse is the body returned by POST /benchmark/start.
type BenchmarkResponse struct {
	Framework   string           `json:"framework"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Config      BenchmarkRequest `json:"config"`
	Payload     []Record         `json:"payload"`
}

// -----------------------------------------------------------------------------
// Stream Types
// -----------------------------------------------------------------------------

// Update is the transmitted state of one entity after a tick.
type Update struct {
	ID        int       `json:"id"`
	Value     float64   `json:"value"` // rounded to 4 decimal digits
	Timestamp time.Time `json:"timestamp"`
}

// Batch aggregates the updates of every entity for exactly one tick.
type Batch struct {
	Batch   bool     `json:"batch"` // always true
	Updates []Update `json:"updates"`
}

// -----------------------------------------------------------------------------
// Result Types
// -----------------------------------------------------------------------------

// ReportMode identifies which benchmark a frontend ran.
type ReportMode string

const (
	ReportModeBulk   ReportMode = "bulk"
	ReportModeStream ReportMode = "stream"
)

// Report is a measurement submitted by a frontend after a benchmark run.
type Report struct {
	ID               uuid.UUID  `json:"id"`
	Framework        string     `json:"framework" validate:"required,max=64"`
	Mode             ReportMode `json:"mode" validate:"oneof=bulk stream"`
	PayloadSize      int        `json:"payloadSize,omitempty" validate:"gte=0,lte=5000"`
	Complexity       Complexity `json:"complexity,omitempty" validate:"omitempty,oneof=low medium high"`
	NetworkTimeMs    float64    `json:"networkTimeMs,omitempty" validate:"gte=0"`
	RenderTimeMs     float64    `json:"renderTimeMs,omitempty" validate:"gte=0"`
	TotalTimeMs      float64    `json:"totalTimeMs,omitempty" validate:"gte=0"`
	FPS              float64    `json:"fps,omitempty" validate:"gte=0"`
	AverageLatencyMs float64    `json:"averageLatencyMs,omitempty"`
	EventsReceived   int64      `json:"eventsReceived,omitempty" validate:"gte=0"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// ReportFilter narrows a report listing. Zero values match everything.
type ReportFilter struct {
	Framework string
	Mode      ReportMode
	Limit     int
}
