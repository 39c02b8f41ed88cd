package siri

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/netex-to-lc/diag"
	"github.com/theoremus-urban-solutions/netex-to-lc/internal/timeutil"
	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

// estimatedCall is one EstimatedCall record of a journey.
type estimatedCall struct {
	stopRef string

	aimedArrival      string
	expectedArrival   string
	aimedDeparture    string
	expectedDeparture string

	cancelled bool
}

// ETExtractor walks EstimatedVehicleJourney elements and yields one
// real-time Connection per consecutive call pair. The connection URI
// uses the same template parameters as the static generator, so a
// real-time connection overwrites its static counterpart downstream.
type ETExtractor struct {
	opts     Options
	journeys []*xmltree.Node
	jPos     int

	buffer []lc.Connection
	bPos   int

	failed error
}

// NewETExtractor prepares the journey walk over a parsed SIRI-ET
// document.
func NewETExtractor(doc *xmltree.Node, opts Options) *ETExtractor {
	journeys := doc.Descendants("EstimatedVehicleJourney")
	log.Debug().Int("journeys", len(journeys)).Msg("Indexed SIRI-ET document")
	return &ETExtractor{opts: opts.withDefaults(), journeys: journeys}
}

// Next returns the next real-time Connection, io.EOF when the
// document is exhausted, or the first fatal error.
func (e *ETExtractor) Next() (*lc.Connection, error) {
	if e.failed != nil {
		return nil, e.failed
	}
	for {
		if e.bPos < len(e.buffer) {
			conn := &e.buffer[e.bPos]
			e.bPos++
			return conn, nil
		}
		if e.jPos >= len(e.journeys) {
			return nil, io.EOF
		}

		journey := e.journeys[e.jPos]
		e.jPos++

		conns, err := e.processJourney(journey)
		if err != nil {
			if e.opts.Strict || isDocumentFatal(err) {
				e.failed = err
				return nil, err
			}
			e.opts.Sink.Add(diag.CodeSchemaShape, etJourneyID(journey), err.Error())
			continue
		}
		e.buffer = conns
		e.bPos = 0
	}
}

// isDocumentFatal reports errors that abort the run even in lenient
// mode.
func isDocumentFatal(err error) bool {
	var missingDate *lc.MissingServiceDateError
	return errors.As(err, &missingDate)
}

func etJourneyID(journey *xmltree.Node) string {
	return journey.FindText("DatedVehicleJourneyRef", "VehicleJourneyRef", "EstimatedVehicleJourneyCode")
}

func (e *ETExtractor) processJourney(journey *xmltree.Node) ([]lc.Connection, error) {
	id := etJourneyID(journey)
	if id == "" {
		return nil, &lc.SchemaShapeError{Unit: "EstimatedVehicleJourney", Missing: "DatedVehicleJourneyRef"}
	}

	journeyCancelled := parseBool(directChildText(journey, "Cancellation"))

	calls := e.extractCalls(journey, id, journeyCancelled)
	if len(calls) < 2 {
		return nil, &lc.SchemaShapeError{Unit: id, Missing: "at least two estimated calls"}
	}

	trip, err := e.opts.Strategy.Journey(id)
	if err := resolveURIError(err, e.opts, id); err != nil {
		return nil, err
	}
	var route string
	if lineRef := journey.FindRef("LineRef"); lineRef != "" {
		route, err = e.opts.Strategy.Line(lineRef)
		if err := resolveURIError(err, e.opts, id); err != nil {
			return nil, err
		}
	}
	var operator string
	if operatorRef := journey.FindRef("OperatorRef"); operatorRef != "" {
		operator, err = e.opts.Strategy.Operator(operatorRef)
		if err := resolveURIError(err, e.opts, id); err != nil {
			return nil, err
		}
	}

	conns := make([]lc.Connection, 0, len(calls)-1)
	for i := 0; i < len(calls)-1; i++ {
		conn, ok, err := e.buildConnection(id, trip, route, operator, calls[i], calls[i+1], i+1)
		if err != nil {
			return nil, err
		}
		if ok {
			conns = append(conns, conn)
		}
	}
	return conns, nil
}

// extractCalls keeps RecordedCalls as a fallback so partially
// progressed journeys still yield their remaining pairs.
func (e *ETExtractor) extractCalls(journey *xmltree.Node, id string, journeyCancelled bool) []estimatedCall {
	nodes := journey.Descendants("EstimatedCall")
	if len(nodes) == 0 {
		nodes = journey.Descendants("RecordedCall")
	}
	calls := make([]estimatedCall, 0, len(nodes))
	for _, node := range nodes {
		call := estimatedCall{
			stopRef:           node.FindRef("StopPointRef", "ScheduledStopPointRef"),
			aimedArrival:      node.FindText("AimedArrivalTime"),
			expectedArrival:   node.FindText("ExpectedArrivalTime"),
			aimedDeparture:    node.FindText("AimedDepartureTime"),
			expectedDeparture: node.FindText("ExpectedDepartureTime"),
		}
		call.cancelled = journeyCancelled ||
			parseBool(node.FindText("Cancellation")) ||
			isCancelledStatus(node.FindText("DepartureStatus")) ||
			isCancelledStatus(node.FindText("ArrivalStatus"))
		if call.stopRef == "" {
			e.opts.Sink.Add(diag.CodeMissingStopRef, id, "estimated call without a stop reference")
			continue
		}
		calls = append(calls, call)
	}
	return calls
}

func (e *ETExtractor) buildConnection(id, trip, route, operator string, from, to estimatedCall, sequence int) (lc.Connection, bool, error) {
	departureText := firstNonEmpty(from.expectedDeparture, from.aimedDeparture)
	arrivalText := firstNonEmpty(to.expectedArrival, to.aimedArrival)
	if departureText == "" || arrivalText == "" {
		e.opts.Sink.Add(diag.CodeMissingTime, id, "pair skipped: missing departure or arrival time")
		return lc.Connection{}, false, nil
	}

	departureTime, err := e.resolve(departureText)
	if err != nil {
		return lc.Connection{}, false, err
	}
	arrivalTime, err := e.resolve(arrivalText)
	if err != nil {
		return lc.Connection{}, false, err
	}
	if arrivalTime.Before(departureTime) {
		return lc.Connection{}, false, &lc.OrderingError{Unit: id, Position: sequence}
	}

	connectionID, err := e.opts.Strategy.Connection(timeutil.DateForURI(departureTime, true), id, sequence)
	if err := resolveURIError(err, e.opts, id); err != nil {
		return lc.Connection{}, false, err
	}
	departureStop, err := e.opts.Strategy.Stop(from.stopRef)
	if err := resolveURIError(err, e.opts, id); err != nil {
		return lc.Connection{}, false, err
	}
	arrivalStop, err := e.opts.Strategy.Stop(to.stopRef)
	if err := resolveURIError(err, e.opts, id); err != nil {
		return lc.Connection{}, false, err
	}

	departureDelay, err := e.delay(from.aimedDeparture, from.expectedDeparture)
	if err != nil {
		return lc.Connection{}, false, err
	}
	arrivalDelay, err := e.delay(to.aimedArrival, to.expectedArrival)
	if err != nil {
		return lc.Connection{}, false, err
	}

	departureStatus := e.classify(departureDelay, from.cancelled)
	arrivalStatus := e.classify(arrivalDelay, to.cancelled)

	conn := lc.Connection{
		ID:            connectionID,
		DepartureStop: departureStop,
		ArrivalStop:   arrivalStop,
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
		Sequence:      sequence,

		Trip:     trip,
		Route:    route,
		Operator: operator,

		Realtime:        true,
		DepartureDelay:  departureDelay,
		ArrivalDelay:    arrivalDelay,
		DepartureStatus: departureStatus,
		ArrivalStatus:   arrivalStatus,
		Status:          rollUpStatus(departureStatus, arrivalStatus),
	}
	return conn, true, nil
}

func (e *ETExtractor) resolve(value string) (time.Time, error) {
	return timeutil.ParseInstant(value, e.opts.ServiceDate, e.opts.Location)
}

// delay is expected minus aimed in whole seconds, nil when either
// side is absent.
func (e *ETExtractor) delay(aimed, expected string) (*int, error) {
	if aimed == "" || expected == "" {
		return nil, nil
	}
	aimedTime, err := e.resolve(aimed)
	if err != nil {
		return nil, err
	}
	expectedTime, err := e.resolve(expected)
	if err != nil {
		return nil, err
	}
	return timeutil.DelaySeconds(aimedTime, expectedTime, true, true), nil
}

// classify orders cancelled above everything, then compares the delay
// against the configured threshold.
func (e *ETExtractor) classify(delay *int, cancelled bool) lc.Status {
	if cancelled {
		return lc.StatusCancelled
	}
	if delay == nil {
		return lc.StatusNoData
	}
	threshold := int(e.opts.DelayThreshold / time.Second)
	switch {
	case *delay >= threshold:
		return lc.StatusDelayed
	case *delay <= -threshold:
		return lc.StatusEarly
	default:
		return lc.StatusOnTime
	}
}

// rollUpStatus is cancelled when either bounding call is cancelled,
// otherwise the departure call's status.
func rollUpStatus(departure, arrival lc.Status) lc.Status {
	if departure == lc.StatusCancelled || arrival == lc.StatusCancelled {
		return lc.StatusCancelled
	}
	return departure
}

// directChildText avoids matching call-level elements when reading a
// journey-level flag.
func directChildText(node *xmltree.Node, name string) string {
	for _, child := range node.Children {
		if child.Local == name {
			return child.Text
		}
	}
	return ""
}

func parseBool(text string) bool {
	return strings.EqualFold(text, "true")
}

func isCancelledStatus(text string) bool {
	return strings.EqualFold(text, "cancelled") || strings.EqualFold(text, "canceled")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
