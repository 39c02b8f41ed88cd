package netex

import (
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/netex-to-lc/diag"
	"github.com/theoremus-urban-solutions/netex-to-lc/internal/timeutil"
	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
	"github.com/theoremus-urban-solutions/netex-to-lc/uri"
	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

var stopRefTags = []string{
	"StopPointRef",
	"ScheduledStopPointRef",
	"StopPointInJourneyPatternRef",
	"QuayRef",
	"StopPlaceRef",
}

var departureTimeTags = []string{"DepartureTime", "AimedDepartureTime", "ExpectedDepartureTime"}
var arrivalTimeTags = []string{"ArrivalTime", "AimedArrivalTime", "ExpectedArrivalTime"}

// Options configures a Generator run. The zero value uses the default
// URI strategy, lenient policy and a fresh diagnostic sink.
type Options struct {
	Strategy *uri.Strategy
	Strict   bool
	Sink     *diag.Sink

	// ServiceDate anchors date-less passing times when set.
	ServiceDate time.Time
	// Location interprets offset-less timestamps; nil means UTC.
	Location *time.Location
}

// passingTime is one ordered call record of a journey.
type passingTime struct {
	sequence int
	hasSeq   bool
	stopRef  string

	departure string
	arrival   string
}

// Generator walks ServiceJourneys and yields one Connection per
// consecutive passing-time pair. It is a one-pass lazy sequence:
// re-running requires a fresh generator over a fresh tree.
type Generator struct {
	opts     Options
	index    *docIndex
	journeys []*xmltree.Node
	jPos     int

	buffer []lc.Connection
	bPos   int

	failed error
}

// NewGenerator indexes the document and prepares the journey walk.
func NewGenerator(doc *xmltree.Node, opts Options) *Generator {
	if opts.Strategy == nil {
		opts.Strategy = uri.NewStrategy("", nil)
	}
	if opts.Sink == nil {
		opts.Sink = diag.NewSink(0)
	}
	journeys := doc.Descendants("ServiceJourney")
	log.Debug().Int("journeys", len(journeys)).Msg("Indexed NeTEx document")
	return &Generator{
		opts:     opts,
		index:    buildIndex(doc),
		journeys: journeys,
	}
}

// Next returns the next Connection, io.EOF when the document is
// exhausted, or the first fatal error in strict mode.
func (g *Generator) Next() (*lc.Connection, error) {
	if g.failed != nil {
		return nil, g.failed
	}
	for {
		if g.bPos < len(g.buffer) {
			conn := &g.buffer[g.bPos]
			g.bPos++
			return conn, nil
		}
		if g.jPos >= len(g.journeys) {
			return nil, io.EOF
		}

		journey := g.journeys[g.jPos]
		g.jPos++

		conns, err := g.processJourney(journey)
		if err != nil {
			if g.opts.Strict {
				g.failed = err
				return nil, err
			}
			g.opts.Sink.Add(diagCode(err), journeyID(journey), err.Error())
			continue
		}
		g.buffer = conns
		g.bPos = 0
	}
}

func journeyID(journey *xmltree.Node) string {
	if id := journey.Attr("id"); id != "" {
		return id
	}
	return journey.FindText("ServiceJourneyRef", "ServiceJourneyId", "Id")
}

func diagCode(err error) string {
	var ordering *lc.OrderingError
	var shape *lc.SchemaShapeError
	var unresolved *lc.UnresolvedReferenceError
	switch {
	case errors.As(err, &ordering):
		return diag.CodeOrdering
	case errors.As(err, &shape):
		return diag.CodeSchemaShape
	case errors.As(err, &unresolved):
		return diag.CodeUnresolvedRef
	default:
		return diag.CodeBadValue
	}
}

func (g *Generator) processJourney(journey *xmltree.Node) ([]lc.Connection, error) {
	id := journeyID(journey)
	if id == "" {
		return nil, &lc.SchemaShapeError{Unit: "ServiceJourney", Missing: "id"}
	}

	times := g.extractPassingTimes(journey, id)
	if len(times) < 2 {
		return nil, &lc.SchemaShapeError{Unit: id, Missing: "at least two passing times"}
	}

	sortPassingTimes(times)

	if err := g.validateOrdering(id, times); err != nil {
		return nil, err
	}

	meta, err := g.journeyMetadata(journey, id)
	if err != nil {
		return nil, err
	}

	conns := make([]lc.Connection, 0, len(times)-1)
	for i := 0; i < len(times)-1; i++ {
		conn, ok, err := g.buildConnection(id, meta, times[i], times[i+1], i+1)
		if err != nil {
			return nil, err
		}
		if ok {
			conns = append(conns, conn)
		}
	}
	return conns, nil
}

// extractPassingTimes collects TimetabledPassingTime records, falling
// back to Call elements for frame-style documents. Records without a
// stop reference cannot anchor a connection and are dropped with a
// diagnostic.
func (g *Generator) extractPassingTimes(journey *xmltree.Node, id string) []passingTime {
	nodes := journey.Descendants("TimetabledPassingTime")
	if len(nodes) == 0 {
		nodes = journey.Descendants("PassingTime")
	}
	if len(nodes) > 0 {
		return g.collectPassingTimes(nodes, id)
	}
	return g.collectCalls(journey.Descendants("Call"), id)
}

func (g *Generator) collectPassingTimes(nodes []*xmltree.Node, id string) []passingTime {
	times := make([]passingTime, 0, len(nodes))
	for _, node := range nodes {
		record := passingTime{
			stopRef:   node.FindRef(stopRefTags...),
			departure: node.FindText(departureTimeTags...),
			arrival:   node.FindText(arrivalTimeTags...),
		}
		record.sequence, record.hasSeq = parseSequence(node.FindText("SequenceNumber", "Order"))
		if record.stopRef == "" {
			g.opts.Sink.Add(diag.CodeMissingStopRef, id, "passing time without a stop reference")
			continue
		}
		times = append(times, record)
	}
	return times
}

func (g *Generator) collectCalls(nodes []*xmltree.Node, id string) []passingTime {
	times := make([]passingTime, 0, len(nodes))
	for _, node := range nodes {
		record := passingTime{stopRef: node.FindRef(stopRefTags...)}
		order := node.Attr("order")
		if order == "" {
			order = node.FindText("Order", "SequenceNumber")
		}
		record.sequence, record.hasSeq = parseSequence(order)
		if arrival := node.First("Arrival"); arrival != nil {
			record.arrival = arrival.FindText("Time", "ArrivalTime", "AimedArrivalTime")
		}
		if departure := node.First("Departure"); departure != nil {
			record.departure = departure.FindText("Time", "DepartureTime", "AimedDepartureTime")
		}
		if record.stopRef == "" {
			g.opts.Sink.Add(diag.CodeMissingStopRef, id, "call without a stop reference")
			continue
		}
		times = append(times, record)
	}
	return times
}

func parseSequence(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
		n = n*10 + int(text[i]-'0')
	}
	return n, true
}

// sortPassingTimes orders by explicit sequence when every record has
// one; otherwise document order stands.
func sortPassingTimes(times []passingTime) {
	for _, t := range times {
		if !t.hasSeq {
			return
		}
	}
	sort.SliceStable(times, func(i, j int) bool {
		return times[i].sequence < times[j].sequence
	})
}

// validateOrdering checks that effective times never decrease along
// the journey.
func (g *Generator) validateOrdering(id string, times []passingTime) error {
	var previous time.Time
	havePrevious := false
	for i, record := range times {
		value := record.departure
		if value == "" {
			value = record.arrival
		}
		if value == "" {
			continue
		}
		resolved, _, err := timeutil.ParseFlexible(value, g.opts.ServiceDate, g.opts.Location)
		if err != nil {
			continue
		}
		if havePrevious && resolved.Before(previous) {
			return &lc.OrderingError{Unit: id, Position: i}
		}
		previous = resolved
		havePrevious = true
	}
	return nil
}

type journeyMeta struct {
	trip          string
	route         string
	operator      string
	headsign      string
	transportMode string
	accessible    *bool
	bikes         *bool
	lineName      string
	linePublic    string
}

func (g *Generator) journeyMetadata(journey *xmltree.Node, id string) (journeyMeta, error) {
	meta := journeyMeta{headsign: g.index.headsignForJourney(journey)}

	trip, err := g.opts.Strategy.Journey(id)
	if err := g.handleURIError(err, id); err != nil {
		return meta, err
	}
	meta.trip = trip

	lineRef, line, ok := g.index.lineForJourney(journey)
	if ok && lineRef != "" {
		route, err := g.opts.Strategy.Line(lineRef)
		if err := g.handleURIError(err, id); err != nil {
			return meta, err
		}
		meta.route = route
		meta.lineName = line.Name
		meta.linePublic = line.PublicCode
		meta.transportMode = line.TransportMode
	}

	operatorRef := journey.FindRef("OperatorRef")
	if operatorRef == "" && ok {
		operatorRef = line.OperatorRef
	}
	if operatorRef != "" {
		operator, err := g.opts.Strategy.Operator(operatorRef)
		if err := g.handleURIError(err, id); err != nil {
			return meta, err
		}
		meta.operator = operator
	}

	if mode := journey.FindText("TransportMode"); mode != "" {
		meta.transportMode = mode
	}

	if access := journey.FindText("MobilityImpairedAccess"); access == "true" || access == "false" {
		value := access == "true"
		meta.accessible = &value
	}

	// Cycle carriage is declared through the journey's facility set,
	// e.g. <LuggageCarriageFacilityList>cycle</LuggageCarriageFacilityList>.
	if facilities := journey.FindText("LuggageCarriageFacilityList"); facilities != "" {
		value := false
		for _, facility := range strings.Fields(facilities) {
			if strings.EqualFold(facility, "cycle") || strings.EqualFold(facility, "cyclesAllowed") {
				value = true
			}
		}
		meta.bikes = &value
	}

	return meta, nil
}

// buildConnection emits one connection for a consecutive pair, or
// ok=false when the pair lacks a usable time.
func (g *Generator) buildConnection(id string, meta journeyMeta, from, to passingTime, sequence int) (lc.Connection, bool, error) {
	departureText := from.departure
	if departureText == "" {
		departureText = from.arrival
	}
	arrivalText := to.arrival
	if arrivalText == "" {
		arrivalText = to.departure
	}
	if departureText == "" || arrivalText == "" {
		g.opts.Sink.Add(diag.CodeMissingTime, id, "pair skipped: missing departure or arrival time")
		return lc.Connection{}, false, nil
	}

	departureTime, hasDate, err := timeutil.ParseFlexible(departureText, g.opts.ServiceDate, g.opts.Location)
	if err != nil {
		g.opts.Sink.Add(diag.CodeBadValue, id, err.Error())
		return lc.Connection{}, false, nil
	}
	arrivalTime, _, err := timeutil.ParseFlexible(arrivalText, g.opts.ServiceDate, g.opts.Location)
	if err != nil {
		g.opts.Sink.Add(diag.CodeBadValue, id, err.Error())
		return lc.Connection{}, false, nil
	}
	if arrivalTime.Before(departureTime) {
		return lc.Connection{}, false, &lc.OrderingError{Unit: id, Position: sequence}
	}

	connectionID, err := g.opts.Strategy.Connection(
		timeutil.DateForURI(departureTime, hasDate), id, sequence)
	if err := g.handleURIError(err, id); err != nil {
		return lc.Connection{}, false, err
	}
	departureStop, err := g.opts.Strategy.Stop(from.stopRef)
	if err := g.handleURIError(err, id); err != nil {
		return lc.Connection{}, false, err
	}
	arrivalStop, err := g.opts.Strategy.Stop(to.stopRef)
	if err := g.handleURIError(err, id); err != nil {
		return lc.Connection{}, false, err
	}

	conn := lc.Connection{
		ID:            connectionID,
		DepartureStop: departureStop,
		ArrivalStop:   arrivalStop,
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
		Sequence:      sequence,

		Trip:     meta.trip,
		Route:    meta.route,
		Operator: meta.operator,
		Headsign: meta.headsign,

		TransportMode:        meta.transportMode,
		WheelchairAccessible: meta.accessible,
		BikesAllowed:         meta.bikes,
		LineName:             meta.lineName,
		LinePublicCode:       meta.linePublic,
	}

	if entry, ok := g.index.stops[from.stopRef]; ok {
		conn.DepartureStopName = entry.Name
		conn.DepartureLat = entry.Latitude
		conn.DepartureLon = entry.Longitude
	}
	if entry, ok := g.index.stops[to.stopRef]; ok {
		conn.ArrivalStopName = entry.Name
		conn.ArrivalLat = entry.Latitude
		conn.ArrivalLon = entry.Longitude
	}

	return conn, true, nil
}

// handleURIError applies the strict/lenient policy to a URI
// resolution result. Lenient runs keep the sentinel URI and record a
// diagnostic.
func (g *Generator) handleURIError(err error, unit string) error {
	if err == nil {
		return nil
	}
	if g.opts.Strict {
		return err
	}
	g.opts.Sink.Add(diag.CodeUnresolvedRef, unit, err.Error())
	return nil
}
