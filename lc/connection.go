// Package lc holds the Linked Connections domain model shared by every
// extractor and the serialization layer.
package lc

import "time"

// Status classifies a call or connection against its timetable.
type Status string

const (
	StatusOnTime    Status = "onTime"
	StatusEarly     Status = "early"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
	StatusNoData    Status = "noData"
)

// Connection is one atomic departure→arrival edge of a journey. A
// connection is immutable once emitted; a real-time update produces a
// new Connection value carrying the same ID so consumers overwrite
// rather than accumulate.
type Connection struct {
	ID            string
	DepartureStop string
	ArrivalStop   string
	DepartureTime time.Time
	ArrivalTime   time.Time

	// Sequence is 1-based within the parent journey.
	Sequence int

	// Resolved in-document references, empty when unresolvable.
	Route    string
	Trip     string
	Operator string
	Headsign string

	TransportMode        string
	WheelchairAccessible *bool
	BikesAllowed         *bool

	// Stop metadata from the document's stop index.
	DepartureStopName string
	ArrivalStopName   string
	DepartureLat      *float64
	DepartureLon      *float64
	ArrivalLat        *float64
	ArrivalLon        *float64

	LineName       string
	LinePublicCode string

	// Real-time fields, set only by the SIRI-ET merger. Delays are
	// whole seconds, positive when late.
	Realtime        bool
	DepartureDelay  *int
	ArrivalDelay    *int
	DepartureStatus Status
	ArrivalStatus   Status
	Status          Status
}
